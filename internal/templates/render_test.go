package templates

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joeblew999/zurich-quartiere/internal/mapview"
	"github.com/joeblew999/zurich-quartiere/internal/page"
)

func renderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestPageAwaitingInput(t *testing.T) {
	v := page.AwaitingInput(page.German, page.Controls{PathSuggestions: []string{"data/sources/q.geojson"}})
	var buf bytes.Buffer
	if err := renderer(t).Page(&buf, v); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{`<html lang="de">`, `id="app"`, `data-bind:path`, `data/sources/q.geojson`, "Bitte laden Sie"} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(html, `id="map"`) {
		t.Fatal("no map expected before input")
	}
}

func TestAppLoadFailedShowsErrorOnly(t *testing.T) {
	v := page.LoadFailed(page.English, page.Controls{Path: "x.geojson"}, errors.New("boom"))
	html, err := renderer(t).App(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `role="alert"`) || !strings.Contains(html, "boom") {
		t.Fatalf("missing error message: %s", html)
	}
	if strings.Contains(html, `id="map"`) || strings.Contains(html, `id="basemap"`) {
		t.Fatal("unexpected map or extended controls")
	}
}

func TestAppRenderedGerman(t *testing.T) {
	m := &mapview.Map{Zoom: 12, Height: 700}
	c := page.Controls{Columns: []string{"quartier", "kreis"}, Column: "kreis", Basemaps: []string{"Hell"}, Schemes: []string{"Grün"}}
	v := page.Rendered(page.German, c, m, "q.geojson", 2, []string{"Enge", "Höngg"})
	html, err := renderer(t).App(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`id="map"`, `data-map="{`, `<option value="kreis" selected>`, "Höngg", "34 statistische Quartiere", `id="scheme"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("app missing %q", want)
		}
	}
}

func TestStaticServesAssets(t *testing.T) {
	rec := httptest.NewRecorder()
	http.StripPrefix("/static/", Static()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/dashboard.js", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "L.geoJSON") {
		t.Fatalf("status=%d", rec.Code)
	}
}
