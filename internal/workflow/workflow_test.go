package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/page"
	"github.com/joeblew999/zurich-quartiere/internal/style"
)

const quartiere = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":1,"properties":{"quartier":"Wipkingen","kreis":10},
  "geometry":{"type":"Polygon","coordinates":[[[8.52,47.39],[8.53,47.39],[8.53,47.40],[8.52,47.40],[8.52,47.39]]]}},
 {"type":"Feature","id":2,"properties":{"quartier":"Enge","kreis":2},
  "geometry":{"type":"Polygon","coordinates":[[[8.53,47.36],[8.54,47.36],[8.54,47.37],[8.53,47.37],[8.53,47.36]]]}},
 {"type":"Feature","id":3,"properties":{"quartier":"Enge","kreis":2},
  "geometry":{"type":"Polygon","coordinates":[[[8.54,47.36],[8.55,47.36],[8.55,47.37],[8.54,47.37],[8.54,47.36]]]}}
]}`

func runner(v page.Variant) *Runner {
	reg := style.Builtin()
	if !v.Extended {
		reg = style.Minimal()
	}
	return &Runner{
		Loader:  geodata.NewLoader(geodata.LoaderConfig{}),
		Styles:  reg,
		Variant: v,
		Suggest: func() []string { return []string{"data/sources/quartiere.geojson"} },
	}
}

func writeFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quartiere.geojson")
	if err := os.WriteFile(path, []byte(quartiere), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEmptyInput(t *testing.T) {
	st := runner(page.German).Run(context.Background(), Input{})
	if !errors.Is(st.Err, ErrEmptyInput) {
		t.Fatalf("err=%v", st.Err)
	}
	if st.View.State != page.StateAwaitingInput || st.View.Map != nil {
		t.Fatalf("view state=%s map=%v", st.View.State, st.View.Map)
	}
	if len(st.View.Controls.PathSuggestions) != 1 {
		t.Fatalf("suggestions=%v", st.View.Controls.PathSuggestions)
	}
}

func TestRunMalformedUpload(t *testing.T) {
	st := runner(page.German).Run(context.Background(), Input{
		Upload: &Upload{Name: "kaputt.geojson", Data: []byte("{not json")},
	})
	if !errors.Is(st.Err, geodata.ErrLoad) {
		t.Fatalf("err=%v, want a load error", st.Err)
	}
	if !st.View.Failed() || st.View.Map != nil {
		t.Fatalf("state=%s map=%v", st.View.State, st.View.Map)
	}
	if st.View.Controls.UploadName != "kaputt.geojson" {
		t.Fatalf("upload name=%q", st.View.Controls.UploadName)
	}
}

func TestRunPathRendersGerman(t *testing.T) {
	path := writeFile(t)
	st := runner(page.German).Run(context.Background(), Input{
		Path:      path,
		Selection: style.Selection{Scheme: "Grün", Labels: true},
	})
	if st.Err != nil {
		t.Fatal(st.Err)
	}
	v := st.View
	if !v.Rendered() || v.Map == nil {
		t.Fatalf("state=%s", v.State)
	}
	if st.Column != "quartier" || v.Controls.Column != "quartier" {
		t.Fatalf("column=%q", st.Column)
	}
	if !slices.Equal(v.Names, []string{"Enge", "Wipkingen"}) {
		t.Fatalf("names=%v", v.Names)
	}
	if len(v.NameColumns) != page.ListColumns {
		t.Fatalf("name columns=%d", len(v.NameColumns))
	}
	if v.Map.Layer.Style.FillColor != "#b2df8a" || len(v.Map.Labels) != 3 {
		t.Fatalf("style=%+v labels=%d", v.Map.Layer.Style, len(v.Map.Labels))
	}
	if v.FeatureCount != 3 || v.Source != path {
		t.Fatalf("count=%d source=%q", v.FeatureCount, v.Source)
	}
}

func TestRunColumnOverride(t *testing.T) {
	st := runner(page.German).Run(context.Background(), Input{Path: writeFile(t), Column: "kreis"})
	if st.Column != "kreis" || !slices.Equal(st.View.Names, []string{"2", "10"}) {
		t.Fatalf("column=%q names=%v", st.Column, st.View.Names)
	}
}

func TestRunUploadWinsOverPath(t *testing.T) {
	st := runner(page.English).Run(context.Background(), Input{
		Upload: &Upload{Name: "quartiere.json", Data: []byte(quartiere)},
		Path:   "/does/not/exist.geojson",
	})
	if st.Err != nil || st.Source != "quartiere.json" {
		t.Fatalf("err=%v source=%q", st.Err, st.Source)
	}
}

func TestRunEnglishIgnoresStyleChoice(t *testing.T) {
	st := runner(page.English).Run(context.Background(), Input{
		Path:      writeFile(t),
		Selection: style.Selection{Scheme: "Rot", Labels: true},
	})
	if st.Style.SchemeName != "Standard" || st.View.Map.Layer.Style.FillColor != "#95B2B8" {
		t.Fatalf("style=%+v", st.Style)
	}
	if len(st.View.Map.Labels) != 0 || len(st.View.NameColumns) != 1 {
		t.Fatalf("labels=%d columns=%d", len(st.View.Map.Labels), len(st.View.NameColumns))
	}
}
