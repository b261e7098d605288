package pbclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/pbclient"
)

func TestAuthAndCollectionsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/collections/_superusers/auth-with-password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["identity"] != "admin@x.com" || body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":400,"message":"Failed to authenticate.","data":{}}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	})
	mux.HandleFunc("GET /api/collections", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":401,"message":"unauthorized"}`))
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"page":1,"totalPages":2,"items":[{"id":"a","name":"users","type":"auth"}]}`))
		default:
			_, _ = w.Write([]byte(`{"page":2,"totalPages":2,"items":[{"id":"b","name":"tenants","type":"base"}]}`))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := pbclient.New(srv.URL + "/")

	_, err := c.Collections(context.Background())
	require.Error(t, err)
	assert.True(t, pbclient.IsUnauthorized(err))

	err = c.AuthSuperuser(context.Background(), "admin@x.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to authenticate")

	require.NoError(t, c.AuthSuperuser(context.Background(), "admin@x.com", "secret"))
	assert.Equal(t, "tok-1", c.Token())

	cols, err := c.Collections(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "users", cols[0].Name)
	assert.Equal(t, "tenants", cols[1].Name)
}

func TestFirstRecordNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `email = "a@x.com"`, r.URL.Query().Get("filter"))
		_, _ = w.Write([]byte(`{"page":1,"perPage":1,"items":[]}`))
	}))
	defer srv.Close()

	c := pbclient.New(srv.URL, pbclient.WithToken("t"))
	_, err := c.FirstRecord(context.Background(), "users", "email = "+pbclient.Quote("a@x.com"))
	require.Error(t, err)
	assert.True(t, pbclient.IsNotFound(err))
}

func TestErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := pbclient.New(srv.URL).Health(context.Background())
	require.Error(t, err)
	var apiErr *pbclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "Service Unavailable", apiErr.Message)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, pbclient.Quote("plain"))
	assert.Equal(t, `"a\"b\\c"`, pbclient.Quote(`a"b\c`))
}
