// Package remote implements the remote document store dialects. Every dialect
// exchanges the whole note collection as one JSON document over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/grove/pkg/core"
)

// Config holds what every dialect needs to reach its endpoint.
type Config struct {
	Endpoint   string
	Credential string
	HTTPClient *http.Client // nil uses a client with transport defaults
	Logger     *slog.Logger
}

type httpClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	authorize  func(h http.Header)
}

func newHTTPClient(cfg Config, authorize func(h http.Header)) *httpClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &httpClient{
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		httpClient: hc,
		logger:     logger,
		authorize:  authorize,
	}
}

// doJSON sends body (when non-nil) as JSON and returns the raw response payload.
// Failures are reported as *core.RemoteError. There are no retries: a failed
// request is surfaced to the caller and the next mutation tries again.
func (c *httpClient) doJSON(ctx context.Context, op, method, url string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote %s: encode request: %w", op, err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &core.RemoteError{Op: op, Kind: core.ErrRemoteUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authorize != nil {
		c.authorize(req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.RemoteError{Op: op, Kind: core.ErrRemoteUnreachable, Err: err}
	}
	payload, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	c.logger.Debug("remote request", "op", op, "method", method, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Kind:       core.ErrRemoteRejected,
			Err:        errorMessage(payload),
		}
	}
	if readErr != nil {
		return nil, &core.RemoteError{Op: op, Kind: core.ErrRemoteUnreachable, Err: readErr}
	}
	return payload, nil
}

// errorMessage extracts a provider message from an error body, if any.
func errorMessage(payload []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return nil
	}
	switch {
	case body.Message != "":
		return fmt.Errorf("%s", body.Message)
	case body.Error != "":
		return fmt.Errorf("%s", body.Error)
	default:
		return nil
	}
}

// decodeRecords accepts a JSON array whose elements are objects carrying a
// string id. An empty array is a valid, empty collection.
func decodeRecords(op string, raw json.RawMessage) ([]core.NoteRecord, error) {
	invalid := func(err error) error {
		return &core.RemoteError{Op: op, Kind: core.ErrRemoteShapeInvalid, Err: err}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		if err == nil {
			err = fmt.Errorf("payload is null")
		}
		return nil, invalid(err)
	}

	records := make([]core.NoteRecord, 0, len(items))
	for i, item := range items {
		var probe map[string]any
		if err := json.Unmarshal(item, &probe); err != nil || probe == nil {
			return nil, invalid(fmt.Errorf("element %d is not an object", i))
		}
		if id, ok := probe["id"].(string); !ok || id == "" {
			return nil, invalid(fmt.Errorf("element %d has no string id", i))
		}
		var record core.NoteRecord
		if err := json.Unmarshal(item, &record); err != nil {
			return nil, invalid(fmt.Errorf("element %d: %w", i, err))
		}
		records = append(records, record)
	}
	return records, nil
}

// recordsPayload keeps an empty collection encoded as [] rather than null.
func recordsPayload(records []core.NoteRecord) []core.NoteRecord {
	if records == nil {
		return []core.NoteRecord{}
	}
	return records
}
