package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/zurich-quartiere/internal/api"
	"github.com/joeblew999/zurich-quartiere/internal/api/dashboard"
	"github.com/joeblew999/zurich-quartiere/internal/db"
	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/logger"
	"github.com/joeblew999/zurich-quartiere/internal/metrics"
	"github.com/joeblew999/zurich-quartiere/internal/page"
	"github.com/joeblew999/zurich-quartiere/internal/service"
	"github.com/joeblew999/zurich-quartiere/internal/session"
	"github.com/joeblew999/zurich-quartiere/internal/style"
	"github.com/joeblew999/zurich-quartiere/internal/templates"
	"github.com/joeblew999/zurich-quartiere/internal/workflow"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	Variant page.Variant
	// PresetsFile is an optional YAML file of extra basemaps and schemes.
	// Only the extended variant offers a choice.
	PresetsFile    string
	CacheSize      int
	SessionTTL     time.Duration
	MaxUploadBytes int64
	// S3 enables s3:// locations when set.
	S3 *geodata.S3Config
	// DisableDB skips DuckDB; /api/v1/tables and /api/v1/query answer 503.
	DisableDB bool
}

// Server is the dashboard HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	log      *slog.Logger
	store    *db.Store
	services *api.Services
	sessions *session.Store
	renderer *templates.Renderer
}

// New creates a new dashboard server.
func New(cfg Config) (*Server, error) {
	if cfg.Variant.Code == "" {
		cfg.Variant = page.English
	}
	log := logger.L()
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("Zurich Neighborhoods API", "1.0.0")
	humaConfig.Info.Description = "Choropleth dashboard of the Zurich neighborhoods loaded from GeoJSON."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	styles, err := loadStyles(cfg)
	if err != nil {
		return nil, err
	}

	loaderCfg := geodata.LoaderConfig{CacheSize: cfg.CacheSize, MaxBytes: cfg.MaxUploadBytes}
	if cfg.S3 != nil {
		loaderCfg.S3 = geodata.NewS3Source(*cfg.S3)
	}
	loader := geodata.NewLoader(loaderCfg)
	sources := service.NewSourceService(cfg.DataDir)

	renderer, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		log:      log,
		sessions: session.NewStore(0, cfg.SessionTTL),
		renderer: renderer,
		services: &api.Services{
			Loader: loader,
			Styles: styles,
			Source: sources,
			Runner: &workflow.Runner{
				Loader:  loader,
				Styles:  styles,
				Variant: cfg.Variant,
				Suggest: sources.Paths,
			},
		},
	}

	// Initialize DuckDB connection
	if !cfg.DisableDB {
		store, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "zurichmap"})
		if err != nil {
			log.Warn("duckdb unavailable, SQL endpoints disabled", "err", err)
		} else {
			s.store = store
			loader.OnParse(s.register)
		}
	}

	s.routes()
	s.handler = logger.AccessMiddleware(log)(mux)
	return s, nil
}

func loadStyles(cfg Config) (*style.Registry, error) {
	if !cfg.Variant.Extended {
		return style.Minimal(), nil
	}
	reg := style.Builtin()
	if cfg.PresetsFile == "" {
		return reg, nil
	}
	f, err := style.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}
	if err := reg.Merge(f); err != nil {
		return nil, fmt.Errorf("presets %s: %w", cfg.PresetsFile, err)
	}
	return reg, nil
}

// register mirrors a freshly parsed collection into DuckDB.
func (s *Server) register(fc *geodata.FeatureCollection) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	table, err := s.store.Register(ctx, fc)
	if err != nil {
		s.log.Warn("duckdb register failed", "source", fc.Name(), "err", err)
		return
	}
	s.log.Debug("duckdb table registered", "source", fc.Name(), "table", table, "rows", fc.Len())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Loader returns the shared geometry loader.
func (s *Server) Loader() *geodata.Loader {
	return s.services.Loader
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.services))
	api.NewInfoHandler(s.config.DataDir, s.config.Variant.Code, s.store != nil, s.services.Loader).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.store).RegisterRoutes(s.humaAPI)

	// Dashboard SSE routes using Huma + Datastar SDK
	dash := dashboard.NewHandler(s.services.Runner, s.sessions, s.renderer, s.config.MaxUploadBytes)
	dash.RegisterRoutes(s.humaAPI)

	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.Handle("/static/", http.StripPrefix("/static/", templates.Static()))

	// Page routes
	s.mux.HandleFunc("/", dash.Page)
}
