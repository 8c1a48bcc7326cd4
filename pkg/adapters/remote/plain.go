package remote

import (
	"context"
	"net/http"

	"github.com/aretw0/grove/pkg/core"
)

// Plain talks to stores that exchange a bare JSON array at the endpoint,
// authenticated with a bearer token. Saves use POST.
type Plain struct {
	client *httpClient
}

// NewPlain creates a plain dialect client.
func NewPlain(cfg Config) *Plain {
	credential := cfg.Credential
	return &Plain{client: newHTTPClient(cfg, func(h http.Header) {
		if credential != "" {
			h.Set("Authorization", "Bearer "+credential)
		}
	})}
}

// Load fetches the collection.
func (p *Plain) Load(ctx context.Context) ([]core.NoteRecord, error) {
	payload, err := p.client.doJSON(ctx, "load", http.MethodGet, p.client.endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords("load", payload)
}

// Save posts the whole collection.
func (p *Plain) Save(ctx context.Context, records []core.NoteRecord) error {
	_, err := p.client.doJSON(ctx, "save", http.MethodPost, p.client.endpoint, recordsPayload(records))
	return err
}

func (p *Plain) Dialect() core.Dialect { return core.DialectPlain }
