package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeblew999/zurich-quartiere/internal/page"
)

const quartiere = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"qname":"Enge"},
  "geometry":{"type":"Polygon","coordinates":[[[8.52,47.35],[8.54,47.35],[8.54,47.37],[8.52,47.37],[8.52,47.35]]]}}
]}`

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "sources")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(src, "quartiere.geojson")
	if err := os.WriteFile(path, []byte(quartiere), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.DataDir = dir
	srv, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts, path
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestServerRoutes(t *testing.T) {
	ts, path := newTestServer(t, Config{Variant: page.German, DisableDB: true})

	tests := []struct {
		path string
		code int
		want string
	}{
		{"/health", http.StatusOK, `"ok"`},
		{"/api/v1/info", http.StatusOK, `"variant":"de"`},
		{"/api/v1/styles", http.StatusOK, `"Violett"`},
		{"/api/v1/sources", http.StatusOK, "quartiere.geojson"},
		{"/api/v1/dataset?path=" + url.QueryEscape(path), http.StatusOK, `"defaultColumn":"qname"`},
		{"/api/v1/tables", http.StatusServiceUnavailable, ""},
		{"/openapi.json", http.StatusOK, "/api/v1/dashboard/render"},
		{"/static/dashboard.css", http.StatusOK, ".sidebar"},
		{"/", http.StatusOK, "Karte der Stadtzürcher Quartiere"},
		{"/metrics", http.StatusOK, "zurichmap_loads_total"},
	}
	for _, tt := range tests {
		code, body := get(t, ts.URL+tt.path)
		if code != tt.code {
			t.Fatalf("%s: status=%d, want %d", tt.path, code, tt.code)
		}
		if !strings.Contains(body, tt.want) {
			t.Fatalf("%s: body missing %q", tt.path, tt.want)
		}
	}
}

func TestServerLinkHeaders(t *testing.T) {
	ts, _ := newTestServer(t, Config{DisableDB: true})
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if links := resp.Header.Values("Link"); len(links) == 0 {
		t.Fatal("expected Link headers on /health")
	}
}

func TestServerEnglishUsesMinimalStyles(t *testing.T) {
	ts, _ := newTestServer(t, Config{DisableDB: true})
	_, body := get(t, ts.URL+"/api/v1/styles")
	if !strings.Contains(body, `"Standard"`) || strings.Contains(body, `"Grün"`) {
		t.Fatalf("styles=%s", body)
	}
	_, html := get(t, ts.URL+"/")
	if !strings.Contains(html, `<html lang="en">`) {
		t.Fatal("expected the English page")
	}
}

func TestServerPresetsFile(t *testing.T) {
	presets := filepath.Join(t.TempDir(), "presets.yaml")
	os.WriteFile(presets, []byte("schemes:\n  - name: Gelb\n    fill: \"#ffff99\"\n    border: \"#b15928\"\n    highlightFill: \"#b15928\"\n    highlightBorder: \"#4d2600\"\n"), 0o644)
	ts, _ := newTestServer(t, Config{Variant: page.German, PresetsFile: presets, DisableDB: true})
	_, body := get(t, ts.URL+"/api/v1/styles")
	if !strings.Contains(body, `"Gelb"`) {
		t.Fatalf("styles=%s", body)
	}

	if _, err := New(Config{Variant: page.German, PresetsFile: filepath.Join(t.TempDir(), "missing.yaml"), DisableDB: true}); err == nil {
		t.Fatal("expected an error for a missing presets file")
	}
}

func TestServerRegistersTablesInDuckDB(t *testing.T) {
	ts, path := newTestServer(t, Config{Variant: page.German})
	code, info := get(t, ts.URL+"/api/v1/info")
	if code != http.StatusOK {
		t.Fatalf("info status=%d", code)
	}
	if !strings.Contains(info, `"db":true`) {
		t.Skip("duckdb unavailable")
	}
	get(t, ts.URL+"/api/v1/dataset?path="+url.QueryEscape(path))
	_, tables := get(t, ts.URL+"/api/v1/tables")
	if !strings.Contains(tables, `"ds_`) {
		t.Fatalf("tables=%s", tables)
	}
}
