package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/services"
	"moviecatalog/proj/internal/storage/memory"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testStores struct {
	movies *memory.MovieStore
	admins *memory.AdminStore
}

func NewTestApplication(t *testing.T) (*Application, testStores) {
	t.Helper()
	cfg := &config.Config{
		AppSecret: "handlers-test-secret-value",
		Auth: config.Auth{
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Storage: config.Storage{Driver: config.StorageDriverMemory},
	}
	log := logger.Discard()
	stores := testStores{
		movies: memory.NewMovieStore(),
		admins: memory.NewAdminStore(),
	}
	bgTasks := tasks.New(log, 1, 10)
	bgTasks.Run()
	t.Cleanup(func() {
		bgTasks.Shutdown(context.Background())
	})
	app := NewApplication(cfg, log, services.Storages{
		Movies: stores.movies,
		Admins: stores.admins,
	}, bgTasks)
	return app, stores
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &testServer{ts}
}

// do sends body encoded as JSON and decodes the response into a generic map.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reqBody = bytes.NewBufferString(raw)
		} else {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			reqBody = bytes.NewReader(encoded)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res.StatusCode, decoded
}
