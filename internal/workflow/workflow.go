// Package workflow runs one dashboard render pass: load the source, pick the
// display column, resolve the style, render the map and compose the page.
package workflow

import (
	"context"
	"errors"

	"github.com/joeblew999/zurich-quartiere/internal/attr"
	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/mapview"
	"github.com/joeblew999/zurich-quartiere/internal/metrics"
	"github.com/joeblew999/zurich-quartiere/internal/page"
	"github.com/joeblew999/zurich-quartiere/internal/style"
)

// ErrEmptyInput means neither an upload nor a path was supplied.
var ErrEmptyInput = errors.New("no upload and no file path given")

// Upload is a GeoJSON file received from the browser, held in memory.
type Upload struct {
	Name string
	Data []byte
}

// Input is what the user supplied for one pass.
type Input struct {
	Upload    *Upload
	Path      string
	Column    string
	Selection style.Selection
}

// State is the outcome of a pass. Err is ErrEmptyInput, a *geodata.LoadError
// or nil.
type State struct {
	Input      Input
	Source     string
	Collection *geodata.FeatureCollection
	Column     string
	Style      style.Resolved
	View       *page.View
	Err        error
}

// Runner holds the pass dependencies shared by all sessions.
type Runner struct {
	Loader  *geodata.Loader
	Styles  *style.Registry
	Variant page.Variant
	// Suggest lists candidate file paths for the sidebar. May be nil.
	Suggest func() []string
	// Prefs overrides attr.NamePreferences when set.
	Prefs []string
}

// Run executes one pass. It never fails: errors end up in the returned
// State and its View.
func (r *Runner) Run(ctx context.Context, in Input) *State {
	st := &State{Input: in}
	st.load(ctx, r.Loader)
	c := r.controls(in)

	switch {
	case errors.Is(st.Err, ErrEmptyInput):
		st.View = page.AwaitingInput(r.Variant, c)
	case st.Err != nil:
		st.View = page.LoadFailed(r.Variant, c, st.Err)
	default:
		st.render(r, c)
	}
	metrics.RendersTotal.WithLabelValues(string(st.View.State)).Inc()
	return st
}

func (st *State) load(ctx context.Context, l *geodata.Loader) {
	in := st.Input
	switch {
	case in.Upload != nil:
		st.Source = in.Upload.Name
		st.Collection, st.Err = l.LoadUpload(in.Upload.Name, in.Upload.Data)
	case in.Path != "":
		st.Source = in.Path
		st.Collection, st.Err = l.Load(ctx, in.Path)
	default:
		st.Err = ErrEmptyInput
	}
}

func (st *State) render(r *Runner, c page.Controls) {
	prefs := r.Prefs
	if prefs == nil {
		prefs = attr.NamePreferences
	}
	fc := st.Collection
	st.Column = attr.Select(fc.Columns(), st.Input.Column, prefs)
	st.Style = r.Styles.Resolve(r.selection(st.Input.Selection))

	c.Columns = fc.Columns()
	c.Column = st.Column
	c.Basemap = st.Style.BasemapName
	c.Scheme = st.Style.SchemeName
	c.Labels = st.Style.Labels

	m := mapview.Render(fc, st.Column, st.Style, r.Variant.MapOptions())
	names := attr.Distinct(fc.Values(st.Column), r.Variant.Lang)
	st.View = page.Rendered(r.Variant, c, m, st.Source, fc.Len(), names)
}

// selection drops choices the variant does not offer.
func (r *Runner) selection(sel style.Selection) style.Selection {
	if !r.Variant.Extended {
		return style.Selection{}
	}
	return sel
}

func (r *Runner) controls(in Input) page.Controls {
	sel := r.Styles.Resolve(r.selection(in.Selection))
	c := page.Controls{
		Path:     in.Path,
		Column:   in.Column,
		Basemaps: r.Styles.Basemaps(),
		Basemap:  sel.BasemapName,
		Schemes:  r.Styles.Schemes(),
		Scheme:   sel.SchemeName,
		Labels:   sel.Labels,
	}
	if in.Upload != nil {
		c.UploadName = in.Upload.Name
	}
	if r.Suggest != nil {
		c.PathSuggestions = r.Suggest()
	}
	return c
}
