package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/page"
	"github.com/joeblew999/zurich-quartiere/internal/service"
	"github.com/joeblew999/zurich-quartiere/internal/style"
	"github.com/joeblew999/zurich-quartiere/internal/workflow"
)

const quartiere = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":7,"properties":{"qname":"Hottingen","knr":7},
  "geometry":{"type":"Polygon","coordinates":[[[8.56,47.36],[8.58,47.36],[8.58,47.38],[8.56,47.38],[8.56,47.36]]]}},
 {"type":"Feature","id":2,"properties":{"qname":"Enge","knr":2},
  "geometry":{"type":"Polygon","coordinates":[[[8.52,47.35],[8.54,47.35],[8.54,47.37],[8.52,47.37],[8.52,47.35]]]}}
]}`

func newTestAPI(t *testing.T) (humatest.TestAPI, string) {
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

	loader := geodata.NewLoader(geodata.LoaderConfig{})
	styles := style.Builtin()
	svc := &Services{
		Loader: loader,
		Styles: styles,
		Source: service.NewSourceService(dir),
		Runner: &workflow.Runner{Loader: loader, Styles: styles, Variant: page.German},
	}

	_, api := humatest.New(t)
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(dir, "de", false, loader).RegisterRoutes(api)
	NewDBHandler(nil).RegisterRoutes(api)
	return api, path
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Get("/health")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"ok"`) {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestStyles(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Get("/api/v1/styles")
	var body StylesBody
	decode(t, resp.Body.Bytes(), &body)
	if len(body.Basemaps) != 5 || len(body.Schemes) != 4 {
		t.Fatalf("basemaps=%d schemes=%d", len(body.Basemaps), len(body.Schemes))
	}
	if body.DefaultBasemap != "Hell" || body.DefaultScheme != "Blau" {
		t.Fatalf("defaults %q/%q", body.DefaultBasemap, body.DefaultScheme)
	}
	if body.Schemes[1].Name != "Grün" || body.Schemes[1].Fill != "#b2df8a" {
		t.Fatalf("scheme=%+v", body.Schemes[1])
	}
}

func TestSources(t *testing.T) {
	api, path := newTestAPI(t)
	var files []service.SourceFile
	decode(t, api.Get("/api/v1/sources").Body.Bytes(), &files)
	if len(files) != 1 || files[0].Path != path {
		t.Fatalf("files=%+v", files)
	}
}

func TestDataset(t *testing.T) {
	api, path := newTestAPI(t)
	resp := api.Get("/api/v1/dataset?path=" + url.QueryEscape(path))
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	var body DatasetBody
	decode(t, resp.Body.Bytes(), &body)
	if body.DefaultColumn != "qname" || body.FeatureCount != 2 || len(body.Columns) != 2 {
		t.Fatalf("body=%+v", body)
	}
	if body.Bounds == nil || body.Bounds[0] != 8.52 || body.Bounds[3] != 47.38 {
		t.Fatalf("bounds=%v", body.Bounds)
	}
}

func TestDatasetErrors(t *testing.T) {
	api, _ := newTestAPI(t)
	if resp := api.Get("/api/v1/dataset?path=" + url.QueryEscape("/no/such/file.geojson")); resp.Code != http.StatusNotFound {
		t.Fatalf("missing file status=%d", resp.Code)
	}
	bad := filepath.Join(t.TempDir(), "bad.geojson")
	os.WriteFile(bad, []byte(`{"type":"Topology"}`), 0o644)
	if resp := api.Get("/api/v1/dataset?path=" + url.QueryEscape(bad)); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unsupported type status=%d", resp.Code)
	}
	if resp := api.Get("/api/v1/dataset"); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing path status=%d", resp.Code)
	}
}

func TestMap(t *testing.T) {
	api, path := newTestAPI(t)
	resp := api.Get("/api/v1/map?scheme=Gr%C3%BCn&labels=true&path=" + url.QueryEscape(path))
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	out := resp.Body.String()
	for _, want := range []string{`"fillColor":"#b2df8a"`, `"fillColor":"#33a02c"`, `"text":"Hottingen"`, `"field":"qname"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("map missing %s: %s", want, out)
		}
	}
}

func TestNeighborhoods(t *testing.T) {
	api, path := newTestAPI(t)
	resp := api.Get("/api/v1/neighborhoods?column=knr&path=" + url.QueryEscape(path))
	var body NeighborhoodsBody
	decode(t, resp.Body.Bytes(), &body)
	if body.Column != "knr" || len(body.Names) != 2 || body.Names[0] != "2" {
		t.Fatalf("body=%+v", body)
	}
	if len(body.Columns) != 3 || len(body.Columns[0]) != 1 || len(body.Columns[2]) != 0 {
		t.Fatalf("columns=%v", body.Columns)
	}
}

func TestInfo(t *testing.T) {
	api, path := newTestAPI(t)
	api.Get("/api/v1/dataset?path=" + url.QueryEscape(path))
	api.Get("/api/v1/dataset?path=" + url.QueryEscape(path))
	var body InfoBody
	decode(t, api.Get("/api/v1/info").Body.Bytes(), &body)
	if body.Variant != "de" || body.DB || body.Cache.Parses != 1 || body.Cache.Hits != 1 {
		t.Fatalf("info=%+v", body)
	}
}

func TestDBUnavailable(t *testing.T) {
	api, _ := newTestAPI(t)
	if resp := api.Get("/api/v1/tables"); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("tables status=%d", resp.Code)
	}
	resp := api.Post("/api/v1/query", map[string]any{"query": "SELECT 1"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("query status=%d", resp.Code)
	}
}
