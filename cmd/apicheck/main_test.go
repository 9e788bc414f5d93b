package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/ameliadesk/internal/client"
)

func newAPI(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.New(client.Options{BaseURL: srv.URL})
}

func TestRun_AllOK(t *testing.T) {
	var dates string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/appointments" {
			dates = r.URL.Query().Get("dates")
		}
		_, _ = io.WriteString(w, `{"data":{"categories":[{}],"services":[{},{}],"users":[],"appointments":[{}]}}`)
	})

	var out bytes.Buffer
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	code := run(context.Background(), &out, api, now, 7)

	assert.Equal(t, 0, code)
	assert.Equal(t, "2024-12-01:2024-12-08", dates)
	assert.Contains(t, out.String(), "categories    OK    1 items")
	assert.Contains(t, out.String(), "services      OK    2 items")
	assert.Contains(t, out.String(), "employees     OK    0 items")
}

func TestRun_CategoriesFailure(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/categories" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"bad key"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{}}`)
	})

	var out bytes.Buffer
	code := run(context.Background(), &out, api, time.Now(), 7)

	assert.Equal(t, 1, code)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, lines[1], "FAIL")
	assert.Contains(t, lines[1], "status 401")
	assert.Contains(t, lines[2], "WARN")
}
