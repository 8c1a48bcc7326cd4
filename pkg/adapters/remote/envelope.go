package remote

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aretw0/grove/pkg/core"
)

// MasterKeyHeader carries the raw credential for the envelope dialect.
const MasterKeyHeader = "X-Master-Key"

// Envelope talks to bin-style stores: the latest revision is read from
// <endpoint>/latest wrapped as {"record": [...]}, and the endpoint itself is
// replaced with PUT.
type Envelope struct {
	client *httpClient
}

// NewEnvelope creates an envelope dialect client.
func NewEnvelope(cfg Config) *Envelope {
	credential := cfg.Credential
	return &Envelope{client: newHTTPClient(cfg, func(h http.Header) {
		if credential != "" {
			h.Set(MasterKeyHeader, credential)
		}
	})}
}

type envelope struct {
	Record json.RawMessage `json:"record"`
}

// Load fetches the latest record.
func (e *Envelope) Load(ctx context.Context) ([]core.NoteRecord, error) {
	payload, err := e.client.doJSON(ctx, "load", http.MethodGet, e.client.endpoint+"/latest", nil)
	if err != nil {
		return nil, err
	}
	var body envelope
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &core.RemoteError{Op: "load", Kind: core.ErrRemoteShapeInvalid, Err: err}
	}
	return decodeRecords("load", body.Record)
}

// Save replaces the record with records.
func (e *Envelope) Save(ctx context.Context, records []core.NoteRecord) error {
	_, err := e.client.doJSON(ctx, "save", http.MethodPut, e.client.endpoint, recordsPayload(records))
	return err
}

func (e *Envelope) Dialect() core.Dialect { return core.DialectEnvelope }
