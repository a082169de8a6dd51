// Package page arranges one render pass into a dashboard view: sidebar
// controls, map canvas, neighborhood list and informational text.
package page

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/language"

	"github.com/joeblew999/zurich-quartiere/internal/attr"
	"github.com/joeblew999/zurich-quartiere/internal/mapview"
)

// State is the page state after a render pass.
type State string

const (
	StateAwaitingInput State = "awaiting-input"
	StateRendered      State = "rendered"
	StateLoadFailed    State = "load-failed"
)

// ListColumns is the number of columns of the neighborhood list in the
// extended variant.
const ListColumns = 3

// Variant selects language and feature set of the dashboard.
type Variant struct {
	Code     string
	Lang     language.Tag
	Extended bool
}

var (
	English = Variant{Code: "en", Lang: language.English}
	German  = Variant{Code: "de", Lang: language.German, Extended: true}
)

// ParseVariant maps "en" or "de" to a Variant.
func ParseVariant(code string) (Variant, error) {
	switch code {
	case "en", "":
		return English, nil
	case "de":
		return German, nil
	}
	return Variant{}, fmt.Errorf("unknown variant %q (want en or de)", code)
}

// Strings returns the variant's texts.
func (v Variant) Strings() Strings {
	if v.Extended {
		return german
	}
	return english
}

// MapOptions returns the map presentation for the variant.
func (v Variant) MapOptions() mapview.Options {
	t := v.Strings()
	opts := mapview.Options{
		LayerName: t.LayerName,
		Alias:     t.TooltipAlias,
		Lang:      v.Lang,
		Height:    700,
	}
	if v.Extended {
		opts.Controls = mapview.Controls{Scale: true, Fullscreen: true}
	} else {
		opts.Width = 900
	}
	return opts
}

// Controls is the sidebar state.
type Controls struct {
	Path            string
	PathSuggestions []string
	UploadName      string
	Columns         []string
	Column          string
	Basemaps        []string
	Basemap         string
	Schemes         []string
	Scheme          string
	Labels          bool
}

// View is everything the page template needs.
type View struct {
	Variant      Variant
	Text         Strings
	State        State
	Message      string
	Controls     Controls
	Map          *mapview.Map
	Source       string
	FeatureCount int
	Names        []string
	NameColumns  [][]string
}

// AwaitingInput is the view shown before any source is supplied.
func AwaitingInput(v Variant, c Controls) *View {
	t := v.Strings()
	return &View{Variant: v, Text: t, State: StateAwaitingInput, Message: t.Prompt, Controls: c}
}

// LoadFailed reports err and shows no map.
func LoadFailed(v Variant, c Controls, err error) *View {
	t := v.Strings()
	return &View{
		Variant:  v,
		Text:     t,
		State:    StateLoadFailed,
		Message:  fmt.Sprintf("%s: %v", t.LoadFailed, err),
		Controls: c,
	}
}

// Rendered is the full page. names must already be sorted and distinct.
func Rendered(v Variant, c Controls, m *mapview.Map, source string, count int, names []string) *View {
	view := &View{
		Variant:      v,
		Text:         v.Strings(),
		State:        StateRendered,
		Controls:     c,
		Map:          m,
		Source:       source,
		FeatureCount: count,
		Names:        names,
	}
	if v.Extended {
		view.NameColumns = attr.SplitColumns(names, ListColumns)
	} else {
		view.NameColumns = [][]string{names}
	}
	return view
}

// Rendered reports whether the view carries a map.
func (v *View) Rendered() bool { return v.State == StateRendered }

// Failed reports whether the pass ended in a load error.
func (v *View) Failed() bool { return v.State == StateLoadFailed }

// MapJSON serializes the map canvas for the client bootstrap.
func (v *View) MapJSON() (string, error) {
	if v.Map == nil {
		return "", nil
	}
	b, err := json.Marshal(v.Map)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Signals returns the initial Datastar signals for the sidebar inputs.
func (v *View) Signals() (string, error) {
	b, err := json.Marshal(map[string]any{
		"path":    v.Controls.Path,
		"column":  v.Controls.Column,
		"basemap": v.Controls.Basemap,
		"scheme":  v.Controls.Scheme,
		"labels":  v.Controls.Labels,
		"success": "",
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CountText is the localized feature count caption.
func (v *View) CountText() string {
	return fmt.Sprintf(v.Text.FeatureCount, v.FeatureCount)
}
