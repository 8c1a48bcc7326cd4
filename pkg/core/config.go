package core

import "strings"

// Dialect names a remote store's request/response conventions.
type Dialect string

const (
	// DialectEnvelope wraps payloads in a "record" field, authenticates with a
	// provider-specific header carrying the raw credential and saves with PUT.
	DialectEnvelope Dialect = "envelope"
	// DialectPlain exchanges a bare JSON array, authenticates with a bearer token
	// and saves with POST.
	DialectPlain Dialect = "plain"
)

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	switch d {
	case DialectEnvelope, DialectPlain:
		return true
	default:
		return false
	}
}

// StorageConfig binds the remote backend. An empty Endpoint means local-only mode.
type StorageConfig struct {
	Endpoint   string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Credential string  `json:"credential,omitempty" yaml:"credential,omitempty"`
	Dialect    Dialect `json:"dialect,omitempty" yaml:"dialect,omitempty"`
}

// RemoteEnabled reports whether a remote endpoint is configured.
func (c StorageConfig) RemoteEnabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// Redacted returns a copy safe for logs and status output.
func (c StorageConfig) Redacted() StorageConfig {
	if c.Credential != "" {
		c.Credential = "********"
	}
	return c
}
