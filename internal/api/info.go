package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/zurich-quartiere/internal/geodata"
)

type InfoHandler struct {
	dataDir string
	variant string
	dbOK    bool
	loader  *geodata.Loader
}

func NewInfoHandler(dataDir, variant string, dbOK bool, loader *geodata.Loader) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, variant: variant, dbOK: dbOK, loader: loader}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type CacheBody struct {
	Hits   int64 `json:"hits" doc:"Loads answered from the cache"`
	Misses int64 `json:"misses" doc:"Loads that had to fetch and parse"`
	Parses int64 `json:"parses" doc:"Successful parses"`
}

type InfoBody struct {
	Name     string    `json:"name" doc:"Service name"`
	Version  string    `json:"version" doc:"Service version"`
	Variant  string    `json:"variant" doc:"Dashboard variant (en or de)"`
	DataDir  string    `json:"data_dir" doc:"Data directory path"`
	DB       bool      `json:"db" doc:"Whether database is available"`
	Features []string  `json:"features" doc:"Available features"`
	Cache    CacheBody `json:"cache" doc:"Geometry loader cache counters"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "zurichmap",
		Version:  "0.1.0",
		Variant:  h.variant,
		DataDir:  h.dataDir,
		DB:       h.dbOK,
		Features: []string{"geojson", "upload", "http", "s3"},
	}
	if h.dbOK {
		body.Features = append(body.Features, "duckdb")
	}
	if h.loader != nil {
		st := h.loader.Stats()
		body.Cache = CacheBody{Hits: st.Hits, Misses: st.Misses, Parses: st.Parses}
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
