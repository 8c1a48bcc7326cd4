package remote

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/grove/pkg/core"
)

// Client is a remote store bound to one dialect.
type Client interface {
	core.Remote
	Dialect() core.Dialect
}

// New returns the dialect client for cfg. An empty dialect is resolved with
// DetectDialect. It returns nil and no error when cfg has no endpoint.
func New(cfg core.StorageConfig, httpClient *http.Client, logger *slog.Logger) (Client, error) {
	if !cfg.RemoteEnabled() {
		return nil, nil
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	parsed, err := url.Parse(endpoint)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid remote endpoint %q: must be an http(s) URL", endpoint)
	}

	dialect := cfg.Dialect
	if dialect == "" {
		dialect = DetectDialect(endpoint)
	}
	rc := Config{
		Endpoint:   endpoint,
		Credential: cfg.Credential,
		HTTPClient: httpClient,
		Logger:     logger,
	}
	switch dialect {
	case core.DialectEnvelope:
		return NewEnvelope(rc), nil
	case core.DialectPlain:
		return NewPlain(rc), nil
	default:
		return nil, fmt.Errorf("unknown remote dialect %q", dialect)
	}
}

// DetectDialect guesses the dialect of a configuration saved without one.
// Bin-style hosts use the envelope dialect; anything else is plain.
func DetectDialect(endpoint string) core.Dialect {
	if strings.Contains(strings.ToLower(endpoint), "jsonbin.io") {
		return core.DialectEnvelope
	}
	return core.DialectPlain
}
