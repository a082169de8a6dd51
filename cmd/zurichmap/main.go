package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/zurich-quartiere/internal/attr"
	"github.com/joeblew999/zurich-quartiere/internal/geodata"
	"github.com/joeblew999/zurich-quartiere/internal/logger"
	"github.com/joeblew999/zurich-quartiere/internal/page"
	"github.com/joeblew999/zurich-quartiere/internal/server"
)

// Options defines all CLI flags and env vars for the dashboard server.
// Flags: --host, --port, --data-dir, --variant, --presets, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_VARIANT, ...
type Options struct {
	Host        string `doc:"Host to bind to" default:"0.0.0.0"`
	Port        int    `doc:"Port to listen on" short:"p" default:"8501"`
	DataDir     string `doc:"Directory for data files (sources/, duckdb/)" default:".data"`
	Variant     string `doc:"Dashboard variant: en (minimal) or de (extended)" default:"de"`
	Presets     string `doc:"YAML file with additional basemap and color scheme presets"`
	CacheSize   int    `doc:"Number of parsed GeoJSON files kept in memory" default:"32"`
	SessionTTL  string `doc:"Idle time after which a dashboard session is dropped" default:"2h"`
	MaxUploadMB int    `doc:"Size limit for uploaded and fetched GeoJSON files in MiB" default:"50"`
	S3Endpoint  string `doc:"Custom S3 endpoint for s3:// locations (MinIO, Ceph, ...)"`
	S3Region    string `doc:"S3 region" default:"eu-central-2"`
	S3PathStyle bool   `doc:"Use path-style S3 addressing"`
	NoDB        bool   `doc:"Do not open DuckDB; disables the SQL endpoints"`
}

func serverConfig(opts *Options) (server.Config, error) {
	variant, err := page.ParseVariant(opts.Variant)
	if err != nil {
		return server.Config{}, err
	}
	ttl, err := time.ParseDuration(opts.SessionTTL)
	if err != nil {
		return server.Config{}, fmt.Errorf("session-ttl: %w", err)
	}
	return server.Config{
		Host:           opts.Host,
		Port:           fmt.Sprintf("%d", opts.Port),
		DataDir:        opts.DataDir,
		Variant:        variant,
		PresetsFile:    opts.Presets,
		CacheSize:      opts.CacheSize,
		SessionTTL:     ttl,
		MaxUploadBytes: int64(opts.MaxUploadMB) << 20,
		S3: &geodata.S3Config{
			Region:    opts.S3Region,
			Endpoint:  opts.S3Endpoint,
			PathStyle: opts.S3PathStyle,
		},
		DisableDB: opts.NoDB,
	}, nil
}

func newServer(opts *Options) (*server.Server, error) {
	cfg, err := serverConfig(opts)
	if err != nil {
		return nil, err
	}
	return server.New(cfg)
}

// shutdown drains srv within timeout and logs when connections were cut.
func shutdown(srv *http.Server, log *slog.Logger, timeout time.Duration) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", "err", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	log := logger.Setup()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var httpServer *http.Server

		hooks.OnStart(func() {
			srv, err := newServer(opts)
			if err != nil {
				fatal("Error: %v", err)
			}
			defer srv.Close()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("zurichmap dashboard starting...\n")
			fmt.Printf("  Dashboard: %s/ (%s)\n", baseURL, opts.Variant)
			fmt.Printf("  Data:      %s\n", opts.DataDir)
			fmt.Printf("  Docs:      %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI:   %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics:   %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server error", "err", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			shutdown(httpServer, log, 5*time.Second)
		})
	})

	cli.Root().Use = "zurichmap"
	cli.Root().Short = "Choropleth dashboard of the Zurich neighborhoods"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.NoDB = true
			srv, err := newServer(opts)
			if err != nil {
				fatal("Error: %v", err)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fatal("Error marshaling spec: %v", err)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// inspect subcommand: show what the dashboard would pick from a file
	inspectCmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Load a GeoJSON file and print its columns and neighborhood names",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			cfg, err := serverConfig(opts)
			if err != nil {
				fatal("Error: %v", err)
			}
			loader := geodata.NewLoader(geodata.LoaderConfig{
				MaxBytes: cfg.MaxUploadBytes,
				S3:       geodata.NewS3Source(*cfg.S3),
			})
			fc, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				fatal("Error: %v", err)
			}
			column, _ := cmd.Flags().GetString("column")
			column = attr.Select(fc.Columns(), column, attr.NamePreferences)
			names := attr.Distinct(fc.Values(column), cfg.Variant.Lang)

			fmt.Printf("File:     %s\n", fc.Name())
			fmt.Printf("Features: %d\n", fc.Len())
			fmt.Printf("Columns:  %s\n", strings.Join(fc.Columns(), ", "))
			fmt.Printf("Column:   %s\n", column)
			fmt.Printf("Names (%d):\n", len(names))
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
		}),
	}
	inspectCmd.Flags().StringP("column", "c", "", "Column to list instead of the detected name column")
	cli.Root().AddCommand(inspectCmd)

	cli.Run()
}
