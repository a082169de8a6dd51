package style

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	cartoAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`
	osmAttribution   = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

var (
	positron = TileSource{
		ID:          "cartodbpositron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: cartoAttribution,
		Subdomains:  "abcd",
		MaxZoom:     20,
	}
	darkMatter = TileSource{
		ID:          "cartodbdark_matter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: cartoAttribution,
		Subdomains:  "abcd",
		MaxZoom:     20,
	}
	openStreetMap = TileSource{
		ID:          "openstreetmap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: osmAttribution,
		MaxZoom:     19,
	}
	worldImagery = TileSource{
		ID:          "esri_worldimagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri &mdash; Source: Esri, Maxar, Earthstar Geographics, and the GIS User Community",
		MaxZoom:     19,
	}
	openTopoMap = TileSource{
		ID:          "opentopomap",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: osmAttribution + `, <a href="http://viewfinderpanoramas.org">SRTM</a> | &copy; <a href="https://opentopomap.org">OpenTopoMap</a>`,
		Subdomains:  "abc",
		MaxZoom:     17,
	}
)

// Registry is an ordered, closed set of basemaps and color schemes.
type Registry struct {
	basemaps       map[string]TileSource
	basemapOrder   []string
	schemes        map[string]Scheme
	schemeOrder    []string
	defaultBasemap string
	defaultScheme  string
}

func newRegistry() *Registry {
	return &Registry{
		basemaps: make(map[string]TileSource),
		schemes:  make(map[string]Scheme),
	}
}

// Builtin returns the presets of the extended (German) dashboard: five
// basemaps and four color schemes.
func Builtin() *Registry {
	r := newRegistry()
	r.addBasemap("Hell", positron)
	r.addBasemap("Dunkel", darkMatter)
	r.addBasemap("OpenStreetMap", openStreetMap)
	r.addBasemap("Satellit", worldImagery)
	r.addBasemap("Topografisch", openTopoMap)

	r.addScheme("Blau", Scheme{Fill: "#a6cee3", Border: "#1f78b4", HighlightFill: "#1f78b4", HighlightBorder: "#08306b"})
	r.addScheme("Grün", Scheme{Fill: "#b2df8a", Border: "#33a02c", HighlightFill: "#33a02c", HighlightBorder: "#00441b"})
	r.addScheme("Rot", Scheme{Fill: "#fb9a99", Border: "#e31a1c", HighlightFill: "#e31a1c", HighlightBorder: "#67000d"})
	r.addScheme("Violett", Scheme{Fill: "#cab2d6", Border: "#6a3d9a", HighlightFill: "#6a3d9a", HighlightBorder: "#3f007d"})

	r.defaultBasemap, r.defaultScheme = "Hell", "Blau"
	return r
}

// Minimal returns the fixed presets of the minimal (English) dashboard.
func Minimal() *Registry {
	r := newRegistry()
	r.addBasemap("CartoDB Positron", positron)
	r.addScheme("Standard", Scheme{Fill: "#95B2B8", Border: "#333333", HighlightFill: "#FFD700", HighlightBorder: "#000000"})
	r.defaultBasemap, r.defaultScheme = "CartoDB Positron", "Standard"
	return r
}

func (r *Registry) addBasemap(name string, t TileSource) {
	if _, ok := r.basemaps[name]; !ok {
		r.basemapOrder = append(r.basemapOrder, name)
	}
	r.basemaps[name] = t
}

func (r *Registry) addScheme(name string, s Scheme) {
	if _, ok := r.schemes[name]; !ok {
		r.schemeOrder = append(r.schemeOrder, name)
	}
	r.schemes[name] = s
}

// Basemaps returns basemap names in display order.
func (r *Registry) Basemaps() []string { return slices.Clone(r.basemapOrder) }

// Schemes returns color-scheme names in display order.
func (r *Registry) Schemes() []string { return slices.Clone(r.schemeOrder) }

// Basemap looks up a basemap by name.
func (r *Registry) Basemap(name string) (TileSource, bool) {
	t, ok := r.basemaps[name]
	return t, ok
}

// Scheme looks up a color scheme by name.
func (r *Registry) Scheme(name string) (Scheme, bool) {
	s, ok := r.schemes[name]
	return s, ok
}

// Defaults returns the default basemap and scheme names.
func (r *Registry) Defaults() (basemap, scheme string) {
	return r.defaultBasemap, r.defaultScheme
}

// Resolve maps a selection to rendering parameters. Unknown names resolve to
// the registry defaults.
func (r *Registry) Resolve(sel Selection) Resolved {
	bm := sel.Basemap
	tiles, ok := r.basemaps[bm]
	if !ok {
		bm = r.defaultBasemap
		tiles = r.basemaps[bm]
	}
	sc := sel.Scheme
	scheme, ok := r.schemes[sc]
	if !ok {
		sc = r.defaultScheme
		scheme = r.schemes[sc]
	}
	return resolve(bm, tiles, sc, scheme, sel.Labels)
}

// PresetsFile is the YAML layout of a presets file.
//
//	basemaps:
//	  - name: Swisstopo
//	    url: https://wmts.geo.admin.ch/1.0.0/ch.swisstopo.pixelkarte-farbe/default/current/3857/{z}/{x}/{y}.jpeg
//	    attribution: "&copy; swisstopo"
//	    maxZoom: 18
//	schemes:
//	  - name: Gelb
//	    fill: "#ffff99"
//	    border: "#b15928"
//	    highlightFill: "#b15928"
//	    highlightBorder: "#4d2600"
//	default:
//	  basemap: Swisstopo
//	  scheme: Gelb
type PresetsFile struct {
	Basemaps []NamedBasemap `yaml:"basemaps"`
	Schemes  []NamedScheme  `yaml:"schemes"`
	Default  struct {
		Basemap string `yaml:"basemap"`
		Scheme  string `yaml:"scheme"`
	} `yaml:"default"`
}

// NamedBasemap is a basemap entry of a presets file.
type NamedBasemap struct {
	Name       string `yaml:"name"`
	TileSource `yaml:",inline"`
}

// NamedScheme is a color-scheme entry of a presets file.
type NamedScheme struct {
	Name   string `yaml:"name"`
	Scheme `yaml:",inline"`
}

var colorRE = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// LoadPresets reads and validates a presets file.
func LoadPresets(path string) (*PresetsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	var f PresetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	return &f, nil
}

func (f *PresetsFile) validate() error {
	for i, b := range f.Basemaps {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("basemap %d: name is required", i)
		}
		for _, p := range []string{"{z}", "{x}", "{y}"} {
			if !strings.Contains(b.URL, p) {
				return fmt.Errorf("basemap %q: url must contain %s", b.Name, p)
			}
		}
	}
	for i, s := range f.Schemes {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("scheme %d: name is required", i)
		}
		for _, c := range []string{s.Fill, s.Border, s.HighlightFill, s.HighlightBorder} {
			if !colorRE.MatchString(c) {
				return fmt.Errorf("scheme %q: invalid color %q", s.Name, c)
			}
		}
	}
	return nil
}

// Merge adds or replaces the file's presets. Defaults must name a preset
// known after merging.
func (r *Registry) Merge(f *PresetsFile) error {
	for _, b := range f.Basemaps {
		t := b.TileSource
		if t.ID == "" {
			t.ID = strings.ToLower(strings.ReplaceAll(b.Name, " ", "_"))
		}
		if t.MaxZoom == 0 {
			t.MaxZoom = 18
		}
		r.addBasemap(b.Name, t)
	}
	for _, s := range f.Schemes {
		r.addScheme(s.Name, s.Scheme)
	}
	if d := f.Default.Basemap; d != "" {
		if _, ok := r.basemaps[d]; !ok {
			return fmt.Errorf("default basemap %q is not defined", d)
		}
		r.defaultBasemap = d
	}
	if d := f.Default.Scheme; d != "" {
		if _, ok := r.schemes[d]; !ok {
			return fmt.Errorf("default scheme %q is not defined", d)
		}
		r.defaultScheme = d
	}
	return nil
}
