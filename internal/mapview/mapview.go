// Package mapview builds the map canvas description the dashboard's Leaflet
// bootstrap draws: basemap, styled polygon layer with hover tooltip, optional
// centroid labels and map controls.
package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/language"

	"github.com/joeblew999/zurich-quartiere/internal/attr"
	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/style"
)

// Zurich city center and the initial zoom level.
var Center = orb.Point{8.5417, 47.3769}

const DefaultZoom = 12

// TooltipCSS styles the hover tooltip box.
const TooltipCSS = "background-color: white; border: 2px solid black; border-radius: 3px; " +
	"box-shadow: 3px; font-size: 14px; font-weight: bold; padding: 5px;"

// Map is the complete canvas description.
type Map struct {
	Center   [2]float64       `json:"center" doc:"Initial center as [lat, lon]"`
	Zoom     int              `json:"zoom" doc:"Initial zoom level"`
	Width    int              `json:"width,omitempty" doc:"Canvas width in pixels, 0 for fluid"`
	Height   int              `json:"height" doc:"Canvas height in pixels"`
	Tiles    style.TileSource `json:"tiles"`
	Layer    Layer            `json:"layer"`
	Labels   []Label          `json:"labels,omitempty" doc:"Static centroid labels"`
	Controls Controls         `json:"controls"`
}

// Layer is the styled polygon layer.
type Layer struct {
	Name      string                     `json:"name"`
	Data      *geojson.FeatureCollection `json:"data"`
	Style     style.PathStyle            `json:"style"`
	Highlight style.PathStyle            `json:"highlight"`
	Tooltip   Tooltip                    `json:"tooltip"`
}

// Tooltip shows a single property on hover.
type Tooltip struct {
	Field  string `json:"field"`
	Alias  string `json:"alias"`
	Sticky bool   `json:"sticky"`
	Style  string `json:"style"`
}

// Label is a text marker placed at a polygon centroid.
type Label struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Text string  `json:"text"`
}

// Controls toggles auxiliary map widgets.
type Controls struct {
	Scale      bool `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
}

// Options carries the variant-specific presentation choices.
type Options struct {
	LayerName string
	Alias     string
	Lang      language.Tag
	Controls  Controls
	Width     int
	Height    int
}

// Render builds the canvas for fc, showing column in tooltips and labels.
// Records without geometry are skipped.
func Render(fc *geodata.FeatureCollection, column string, r style.Resolved, opts Options) *Map {
	height := opts.Height
	if height == 0 {
		height = 700
	}
	m := &Map{
		Center:   [2]float64{Center.Lat(), Center.Lon()},
		Zoom:     DefaultZoom,
		Width:    opts.Width,
		Height:   height,
		Tiles:    r.Basemap,
		Controls: opts.Controls,
		Layer: Layer{
			Name:      opts.LayerName,
			Data:      geojson.NewFeatureCollection(),
			Style:     r.Base,
			Highlight: r.Highlight,
			Tooltip: Tooltip{
				Field: column,
				Alias: opts.Alias,
				Style: TooltipCSS,
			},
		},
	}

	for i := range fc.Len() {
		rec := fc.Record(i)
		if rec.Geometry == nil {
			continue
		}
		v, _ := fc.Value(i, column)
		text := attr.Format(v, opts.Lang)

		f := geojson.NewFeature(rec.Geometry)
		f.ID = rec.ID
		f.Properties[column] = text
		m.Layer.Data.Append(f)

		if !r.Labels || text == "" {
			continue
		}
		if c, ok := Centroid(rec.Geometry); ok {
			m.Labels = append(m.Labels, Label{Lat: c.Lat(), Lon: c.Lon(), Text: text})
		}
	}
	return m
}

// Centroid returns the area-weighted centroid of g. Geometries without area
// fall back to the centroid of their points or lines.
func Centroid(g orb.Geometry) (orb.Point, bool) {
	if g == nil {
		return orb.Point{}, false
	}
	c, _ := planar.CentroidArea(g)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) || math.IsInf(c[0], 0) || math.IsInf(c[1], 0) {
		return orb.Point{}, false
	}
	return c, true
}
