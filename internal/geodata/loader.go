package geodata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/joeblew999/zurich-quartiere/internal/metrics"
)

// UploadExtensions lists the file extensions accepted for uploads.
var UploadExtensions = []string{".geojson", ".json"}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	CacheSize int   // number of memoized collections, default 32
	MaxBytes  int64 // per-payload size limit, 0 means unlimited
	HTTP      HTTPSource
	S3        *S3Source // nil disables s3:// locations
}

// Stats reports cache activity.
type Stats struct {
	Hits   int64
	Misses int64
	Parses int64
}

type entry struct {
	version string
	fc      *FeatureCollection
}

// Loader resolves locations to FeatureCollections and memoizes the result
// per location and version.
type Loader struct {
	files    Source
	http     Source
	s3       Source
	maxBytes int64
	cache    *lru.Cache[string, entry]
	group    singleflight.Group
	onParse  func(*FeatureCollection)

	hits   atomic.Int64
	misses atomic.Int64
	parses atomic.Int64
}

// NewLoader creates a loader.
func NewLoader(cfg LoaderConfig) *Loader {
	size := cfg.CacheSize
	if size <= 0 {
		size = 32
	}
	cache, _ := lru.New[string, entry](size)
	l := &Loader{
		files:    FileSource{},
		http:     cfg.HTTP,
		maxBytes: cfg.MaxBytes,
		cache:    cache,
	}
	if cfg.S3 != nil {
		l.s3 = cfg.S3
	}
	return l
}

// OnParse registers fn to run after every successful parse (not on cache
// hits). Must be called before the loader is shared.
func (l *Loader) OnParse(fn func(*FeatureCollection)) {
	l.onParse = fn
}

// Stats returns cumulative cache counters.
func (l *Loader) Stats() Stats {
	return Stats{Hits: l.hits.Load(), Misses: l.misses.Load(), Parses: l.parses.Load()}
}

func (l *Loader) sourceFor(loc string) (Source, error) {
	switch {
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return l.http, nil
	case strings.HasPrefix(loc, "s3://"):
		if l.s3 == nil {
			return nil, errors.New("s3 locations are not enabled")
		}
		return l.s3, nil
	default:
		return l.files, nil
	}
}

// Load reads loc (a file path, http(s) URL or s3:// URI). Loading the same
// unmodified location again returns the identical collection.
func (l *Loader) Load(ctx context.Context, loc string) (*FeatureCollection, error) {
	src, err := l.sourceFor(loc)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("failed").Inc()
		return nil, loadErr(loc, ReasonUnsupported, err)
	}
	version, err := src.Version(ctx, loc)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("failed").Inc()
		return nil, loadErr(loc, ReasonUnreadable, err)
	}

	var data []byte
	if version == "" {
		data, err = src.Fetch(ctx, loc, l.maxBytes)
		if err != nil {
			metrics.LoadsTotal.WithLabelValues("failed").Inc()
			return nil, loadErr(loc, ReasonUnreadable, err)
		}
		version = "sha256:" + digest(data)
	}

	if fc, ok := l.lookup(loc, version); ok {
		return fc, nil
	}

	// The fetch is shared with joined callers and must outlive this request.
	shared := context.WithoutCancel(ctx)
	return l.parseOnce(loc, version, func() ([]byte, error) {
		if data != nil {
			return data, nil
		}
		b, err := src.Fetch(shared, loc, l.maxBytes)
		if err != nil {
			return nil, loadErr(loc, ReasonUnreadable, err)
		}
		return b, nil
	})
}

// LoadUpload parses uploaded bytes held in memory. name is the client file
// name and must carry one of UploadExtensions.
func (l *Loader) LoadUpload(name string, data []byte) (*FeatureCollection, error) {
	if err := CheckUploadName(name); err != nil {
		metrics.LoadsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		metrics.LoadsTotal.WithLabelValues("failed").Inc()
		return nil, loadErr(name, ReasonUnreadable, errTooLarge)
	}
	key := "upload:" + name
	version := "sha256:" + digest(data)
	if fc, ok := l.lookup(key, version); ok {
		return fc, nil
	}
	return l.parseOnce(key, version, func() ([]byte, error) { return data, nil })
}

// CheckUploadName validates an upload's file extension.
func CheckUploadName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, ok := range UploadExtensions {
		if ext == ok {
			return nil
		}
	}
	return loadErr(name, ReasonUnsupported,
		fmt.Errorf("only %s files are accepted", strings.Join(UploadExtensions, ", ")))
}

func (l *Loader) lookup(key, version string) (*FeatureCollection, bool) {
	if e, ok := l.cache.Get(key); ok && e.version == version {
		l.hits.Add(1)
		metrics.LoadsTotal.WithLabelValues("cached").Inc()
		return e.fc, true
	}
	return nil, false
}

// parseOnce fetches and parses under singleflight so concurrent renders of
// the same source share one parse.
func (l *Loader) parseOnce(key, version string, fetch func() ([]byte, error)) (*FeatureCollection, error) {
	v, err, _ := l.group.Do(key+"@"+version, func() (any, error) {
		if fc, ok := l.lookup(key, version); ok {
			return fc, nil
		}
		l.misses.Add(1)
		start := time.Now()

		data, err := fetch()
		if err != nil {
			return nil, err
		}
		fc, err := Parse(displayName(key), data)
		if err != nil {
			return nil, err
		}
		l.parses.Add(1)
		metrics.LoadsTotal.WithLabelValues("parsed").Inc()
		metrics.LoadDurationMs.Observe(float64(time.Since(start).Milliseconds()))

		l.cache.Add(key, entry{version: version, fc: fc})
		if l.onParse != nil {
			l.onParse(fc)
		}
		return fc, nil
	})
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	return v.(*FeatureCollection), nil
}

func displayName(key string) string {
	return strings.TrimPrefix(key, "upload:")
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
