// Package style maps the user's basemap and color-scheme choices to concrete
// rendering parameters.
package style

// TileSource describes a raster basemap as Leaflet consumes it.
type TileSource struct {
	ID          string `json:"id" yaml:"id" doc:"Basemap identifier" example:"cartodbpositron"`
	URL         string `json:"url" yaml:"url" doc:"XYZ tile URL template"`
	Attribution string `json:"attribution" yaml:"attribution" doc:"Attribution HTML"`
	Subdomains  string `json:"subdomains,omitempty" yaml:"subdomains,omitempty" doc:"Tile server subdomains"`
	MaxZoom     int    `json:"maxZoom" yaml:"maxZoom" doc:"Highest available zoom level"`
}

// Scheme is the four colors of a polygon layer: fill and border in normal
// and in highlighted (hover) state.
type Scheme struct {
	Fill            string `json:"fill" yaml:"fill" doc:"Base fill color" example:"#b2df8a"`
	Border          string `json:"border" yaml:"border" doc:"Base border color" example:"#33a02c"`
	HighlightFill   string `json:"highlightFill" yaml:"highlightFill" doc:"Hover fill color" example:"#33a02c"`
	HighlightBorder string `json:"highlightBorder" yaml:"highlightBorder" doc:"Hover border color" example:"#00441b"`
}

// PathStyle is a Leaflet path style object.
type PathStyle struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Base style weights and opacities; only the colors vary per scheme.
const (
	BaseWeight           = 2
	BaseFillOpacity      = 0.4
	HighlightWeight      = 3
	HighlightFillOpacity = 0.6
)

// Selection is what the user picked in the sidebar.
type Selection struct {
	Basemap string
	Scheme  string
	Labels  bool
}

// Resolved holds the concrete rendering parameters for a Selection.
type Resolved struct {
	BasemapName string
	Basemap     TileSource
	SchemeName  string
	Scheme      Scheme
	Base        PathStyle
	Highlight   PathStyle
	Labels      bool
}

func resolve(basemapName string, tiles TileSource, schemeName string, s Scheme, labels bool) Resolved {
	return Resolved{
		BasemapName: basemapName,
		Basemap:     tiles,
		SchemeName:  schemeName,
		Scheme:      s,
		Base: PathStyle{
			FillColor:   s.Fill,
			Color:       s.Border,
			Weight:      BaseWeight,
			FillOpacity: BaseFillOpacity,
		},
		Highlight: PathStyle{
			FillColor:   s.HighlightFill,
			Color:       s.HighlightBorder,
			Weight:      HighlightWeight,
			FillOpacity: HighlightFillOpacity,
		},
		Labels: labels,
	}
}
