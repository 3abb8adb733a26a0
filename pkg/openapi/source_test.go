package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formflow/pkg/openapi"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := openapi.ParseSource("https://example.com/openapi.json")
	if err != nil || src.Kind() != openapi.SourceKindURL {
		t.Fatalf("expected url source, got %v %v", src, err)
	}
	src, err = openapi.ParseSource(" ./testdata/../testdata/listings.json ")
	if err != nil || src.Kind() != openapi.SourceKindFile || src.Location() != "testdata/listings.json" {
		t.Fatalf("expected cleaned file source, got %v %v", src, err)
	}
	if _, err := openapi.ParseSource(""); err == nil {
		t.Fatalf("expected error for empty source")
	}
	if _, err := openapi.SourceFromURL("ftp://example.com/x"); err == nil {
		t.Fatalf("expected error for ftp scheme")
	}
}

func TestFetchSources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	data, err := openapi.Fetch(ctx, openapi.SourceFromFile("testdata/listings.json"))
	if err != nil || !strings.Contains(string(data), "createListing") {
		t.Fatalf("file fetch failed: %v", err)
	}

	fsys := fstest.MapFS{"api.json": {Data: []byte(`{"openapi":"3.0.0"}`)}}
	data, err = openapi.Fetch(ctx, openapi.SourceFromFS("api.json"), openapi.WithFileSystem(fsys))
	if err != nil || string(data) != `{"openapi":"3.0.0"}` {
		t.Fatalf("fs fetch failed: %q %v", data, err)
	}
	if _, err := openapi.Fetch(ctx, openapi.SourceFromFS("api.json")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
}

func TestFetchURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	ctx := context.Background()
	src, err := openapi.SourceFromURL(server.URL + "/openapi.json")
	if err != nil {
		t.Fatalf("SourceFromURL: %v", err)
	}
	if _, err := openapi.Fetch(ctx, src); err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http disabled error, got %v", err)
	}
	data, err := openapi.Fetch(ctx, src, openapi.WithHTTPClient(server.Client()))
	if err != nil || string(data) != `{"ok":true}` {
		t.Fatalf("url fetch failed: %q %v", data, err)
	}

	missing, _ := openapi.SourceFromURL(server.URL + "/missing")
	if _, err := openapi.Fetch(ctx, missing, openapi.WithHTTPClient(server.Client())); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}
