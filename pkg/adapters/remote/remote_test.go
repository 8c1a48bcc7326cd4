package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/grove/pkg/adapters/remote"
	"github.com/aretw0/grove/pkg/core"
)

var sample = []core.NoteRecord{
	{ID: "a", Title: "A", CreatedAt: 1, UpdatedAt: 1, IsExpanded: true},
	{ID: "b", ParentID: "a", Title: "B", CreatedAt: 2, UpdatedAt: 2},
}

type captured struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newServer(t *testing.T, status int, response string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			*got = captured{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: body}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEnvelope(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Unwraps Record", func(t *testing.T) {
		var got captured
		srv := newServer(t, http.StatusOK, `{"record":[{"id":"a","parentId":null,"title":"A"}],"metadata":{"id":"bin"}}`, &got)
		client := remote.NewEnvelope(remote.Config{Endpoint: srv.URL + "/v3/b/bin", Credential: "secret"})

		records, err := client.Load(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "A", records[0].Title)
		assert.True(t, records[0].IsRoot())

		assert.Equal(t, http.MethodGet, got.method)
		assert.Equal(t, "/v3/b/bin/latest", got.path)
		assert.Equal(t, "secret", got.header.Get(remote.MasterKeyHeader))
		assert.Empty(t, got.header.Get("Authorization"))
	})

	t.Run("Save Puts Bare Array", func(t *testing.T) {
		var got captured
		srv := newServer(t, http.StatusOK, `{}`, &got)
		client := remote.NewEnvelope(remote.Config{Endpoint: srv.URL + "/v3/b/bin/", Credential: "secret"})

		require.NoError(t, client.Save(ctx, sample))
		assert.Equal(t, http.MethodPut, got.method)
		assert.Equal(t, "/v3/b/bin", got.path)
		assert.Equal(t, "application/json", got.header.Get("Content-Type"))

		var sent []core.NoteRecord
		require.NoError(t, json.Unmarshal(got.body, &sent))
		assert.Equal(t, sample, sent)
	})

	t.Run("Record Must Be An Array", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"record":{"id":"a"}}`, nil)
		_, err := remote.NewEnvelope(remote.Config{Endpoint: srv.URL}).Load(ctx)
		assert.ErrorIs(t, err, core.ErrRemoteShapeInvalid)
	})
}

func TestPlain(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Bare Array", func(t *testing.T) {
		var got captured
		srv := newServer(t, http.StatusOK, `[{"id":"a"},{"id":"b","parentId":"a"}]`, &got)
		client := remote.NewPlain(remote.Config{Endpoint: srv.URL + "/notes", Credential: "tok"})

		records, err := client.Load(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "a", records[1].ParentID)
		assert.Equal(t, "/notes", got.path)
		assert.Equal(t, "Bearer tok", got.header.Get("Authorization"))
	})

	t.Run("Empty Array Is Valid", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[]`, nil)
		records, err := remote.NewPlain(remote.Config{Endpoint: srv.URL}).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Save Posts Without Credential Header When Unset", func(t *testing.T) {
		var got captured
		srv := newServer(t, http.StatusCreated, ``, &got)
		require.NoError(t, remote.NewPlain(remote.Config{Endpoint: srv.URL}).Save(ctx, nil))
		assert.Equal(t, http.MethodPost, got.method)
		assert.Empty(t, got.header.Get("Authorization"))
		assert.JSONEq(t, `[]`, string(got.body))
	})

	t.Run("Shape Errors", func(t *testing.T) {
		for name, body := range map[string]string{
			"object":       `{"foo":1}`,
			"null":         `null`,
			"scalar items": `[1,2]`,
			"missing id":   `[{"title":"x"}]`,
			"numeric id":   `[{"id":7}]`,
			"not json":     `<html>`,
		} {
			t.Run(name, func(t *testing.T) {
				srv := newServer(t, http.StatusOK, body, nil)
				_, err := remote.NewPlain(remote.Config{Endpoint: srv.URL}).Load(ctx)
				assert.ErrorIs(t, err, core.ErrRemoteShapeInvalid)
			})
		}
	})
}

func TestRemoteErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Server Error Is Rejected", func(t *testing.T) {
		srv := newServer(t, http.StatusInternalServerError, `{"message":"boom"}`, nil)
		err := remote.NewPlain(remote.Config{Endpoint: srv.URL}).Save(ctx, sample)
		require.ErrorIs(t, err, core.ErrRemoteRejected)

		var remoteErr *core.RemoteError
		require.True(t, errors.As(err, &remoteErr))
		assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
		assert.Equal(t, "save", remoteErr.Op)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := remote.NewEnvelope(remote.Config{Endpoint: url}).Load(ctx)
		assert.ErrorIs(t, err, core.ErrRemoteUnreachable)
		assert.NotErrorIs(t, err, core.ErrRemoteRejected)
	})
}

func TestNew(t *testing.T) {
	t.Run("Local Only", func(t *testing.T) {
		client, err := remote.New(core.StorageConfig{}, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("Explicit Dialect", func(t *testing.T) {
		client, err := remote.New(core.StorageConfig{Endpoint: "https://api.jsonbin.io/v3/b/1", Dialect: core.DialectPlain}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, core.DialectPlain, client.Dialect())
	})

	t.Run("Detected Dialect", func(t *testing.T) {
		client, err := remote.New(core.StorageConfig{Endpoint: "https://api.jsonbin.io/v3/b/1"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, core.DialectEnvelope, client.Dialect())

		client, err = remote.New(core.StorageConfig{Endpoint: "https://notes.example.com/api"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, core.DialectPlain, client.Dialect())
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := remote.New(core.StorageConfig{Endpoint: "ftp://example.com"}, nil, nil)
		assert.Error(t, err)
		_, err = remote.New(core.StorageConfig{Endpoint: "https://example.com", Dialect: "soap"}, nil, nil)
		assert.Error(t, err)
	})
}
