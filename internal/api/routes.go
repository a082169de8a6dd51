// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/zurich-quartiere/internal/attr"
	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/mapview"
	"github.com/joeblew999/zurich-quartiere/internal/page"
	"github.com/joeblew999/zurich-quartiere/internal/service"
	"github.com/joeblew999/zurich-quartiere/internal/style"
	"github.com/joeblew999/zurich-quartiere/internal/workflow"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Loader *geodata.Loader
	Runner *workflow.Runner
	Styles *style.Registry
	Source *service.SourceService
}

// Types

type PathInput struct {
	Path string `query:"path" required:"true" minLength:"1" doc:"File path, http(s) URL or s3:// URI of a GeoJSON file" example:"data/sources/stadtquartiere.geojson"`
}

type ColumnInput struct {
	PathInput
	Column string `query:"column" doc:"Attribute column to display; defaults to the detected name column" example:"qname"`
}

type MapInput struct {
	ColumnInput
	Basemap string `query:"basemap" doc:"Basemap preset name" example:"Hell"`
	Scheme  string `query:"scheme" doc:"Color scheme preset name" example:"Grün"`
	Labels  bool   `query:"labels" doc:"Place centroid labels"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type BasemapBody struct {
	Name string `json:"name" doc:"Preset name" example:"Hell"`
	style.TileSource
}

type SchemeBody struct {
	Name string `json:"name" doc:"Preset name" example:"Grün"`
	style.Scheme
}

type StylesBody struct {
	Basemaps       []BasemapBody `json:"basemaps" doc:"Basemap presets in display order"`
	Schemes        []SchemeBody  `json:"schemes" doc:"Color scheme presets in display order"`
	DefaultBasemap string        `json:"defaultBasemap" doc:"Basemap used when none is chosen"`
	DefaultScheme  string        `json:"defaultScheme" doc:"Scheme used when none is chosen"`
}

type DatasetBody struct {
	Name          string      `json:"name" doc:"Source name"`
	Digest        string      `json:"digest" doc:"SHA-256 of the raw file"`
	Columns       []string    `json:"columns" doc:"Attribute columns in document order"`
	DefaultColumn string      `json:"defaultColumn" doc:"Column shown when none is chosen"`
	FeatureCount  int         `json:"featureCount" doc:"Number of features"`
	Bounds        *[4]float64 `json:"bounds,omitempty" doc:"[minLon, minLat, maxLon, maxLat] of all geometries"`
}

type NeighborhoodsBody struct {
	Column  string     `json:"column" doc:"Column the names were taken from"`
	Names   []string   `json:"names" doc:"Distinct values, alphabetically sorted"`
	Columns [][]string `json:"columns" doc:"Names split into three display columns"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterStyles registers the style preset listing.
func (h *APIHandler) RegisterStyles(api huma.API) {
	huma.Get(api, "/api/v1/styles", h.GetStyles, huma.OperationTags("styles"))
}

// RegisterSources registers source listing routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
}

// RegisterDatasets registers the routes that load a GeoJSON file.
func (h *APIHandler) RegisterDatasets(api huma.API) {
	huma.Get(api, "/api/v1/dataset", h.GetDataset, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/map", h.GetMap, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/neighborhoods", h.GetNeighborhoods, huma.OperationTags("datasets"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetStyles(ctx context.Context, input *struct{}) (*struct{ Body StylesBody }, error) {
	reg := h.svc.Styles
	body := StylesBody{Basemaps: []BasemapBody{}, Schemes: []SchemeBody{}}
	for _, name := range reg.Basemaps() {
		t, _ := reg.Basemap(name)
		body.Basemaps = append(body.Basemaps, BasemapBody{Name: name, TileSource: t})
	}
	for _, name := range reg.Schemes() {
		s, _ := reg.Scheme(name)
		body.Schemes = append(body.Schemes, SchemeBody{Name: name, Scheme: s})
	}
	body.DefaultBasemap, body.DefaultScheme = reg.Defaults()
	return &struct{ Body StylesBody }{Body: body}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []service.SourceFile }, error) {
	if h.svc == nil || h.svc.Source == nil {
		return &struct{ Body []service.SourceFile }{Body: []service.SourceFile{}}, nil
	}
	sources, err := h.svc.Source.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list sources", err)
	}
	return &struct{ Body []service.SourceFile }{Body: sources}, nil
}

func (h *APIHandler) GetDataset(ctx context.Context, input *PathInput) (*struct{ Body DatasetBody }, error) {
	fc, err := h.svc.Loader.Load(ctx, input.Path)
	if err != nil {
		return nil, loadError(err)
	}
	body := DatasetBody{
		Name:          fc.Name(),
		Digest:        fc.Digest(),
		Columns:       fc.Columns(),
		DefaultColumn: attr.DefaultColumn(fc.Columns(), attr.NamePreferences),
		FeatureCount:  fc.Len(),
	}
	if b, ok := fc.Bound(); ok {
		body.Bounds = &[4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
	}
	return &struct{ Body DatasetBody }{Body: body}, nil
}

func (h *APIHandler) GetMap(ctx context.Context, input *MapInput) (*struct{ Body *mapview.Map }, error) {
	st := h.svc.Runner.Run(ctx, workflow.Input{
		Path:      input.Path,
		Column:    input.Column,
		Selection: style.Selection{Basemap: input.Basemap, Scheme: input.Scheme, Labels: input.Labels},
	})
	if st.Err != nil {
		return nil, loadError(st.Err)
	}
	return &struct{ Body *mapview.Map }{Body: st.View.Map}, nil
}

func (h *APIHandler) GetNeighborhoods(ctx context.Context, input *ColumnInput) (*struct{ Body NeighborhoodsBody }, error) {
	st := h.svc.Runner.Run(ctx, workflow.Input{Path: input.Path, Column: input.Column})
	if st.Err != nil {
		return nil, loadError(st.Err)
	}
	return &struct{ Body NeighborhoodsBody }{Body: NeighborhoodsBody{
		Column:  st.Column,
		Names:   st.View.Names,
		Columns: attr.SplitColumns(st.View.Names, page.ListColumns),
	}}, nil
}

// loadError maps loader failures to HTTP errors: unreadable sources are 404,
// everything else the client sent is 422.
func loadError(err error) error {
	var le *geodata.LoadError
	if !errors.As(err, &le) {
		return huma.Error500InternalServerError("Failed to load GeoJSON", err)
	}
	if le.Reason == geodata.ReasonUnreadable {
		return huma.Error404NotFound(le.Error())
	}
	return huma.Error422UnprocessableEntity(le.Error())
}
