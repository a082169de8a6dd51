package geodata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source reads raw payloads from one kind of location.
//
// Version returns a cheap change token for loc (mtime, ETag, ...). An empty
// token means the source cannot tell, and the Loader falls back to hashing
// the fetched bytes.
type Source interface {
	Version(ctx context.Context, loc string) (string, error)
	Fetch(ctx context.Context, loc string, limit int64) ([]byte, error)
}

var errTooLarge = errors.New("payload exceeds size limit")

// readLimited reads r fully, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

// FileSource reads from the local filesystem. Paths are used verbatim.
type FileSource struct{}

func (FileSource) Version(_ context.Context, loc string) (string, error) {
	info, err := os.Stat(loc)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", loc)
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

func (FileSource) Fetch(_ context.Context, loc string, limit int64) ([]byte, error) {
	f, err := os.Open(loc)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, limit)
}

// HTTPSource reads http:// and https:// URLs.
type HTTPSource struct {
	Client *http.Client
}

func (s HTTPSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s HTTPSource) Version(ctx context.Context, loc string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, loc, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	// Some servers reject HEAD; let Fetch decide.
	if resp.StatusCode >= 400 {
		return "", nil
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		return etag, nil
	}
	return resp.Header.Get("Last-Modified"), nil
}

func (s HTTPSource) Fetch(ctx context.Context, loc string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", loc, resp.Status)
	}
	return readLimited(resp.Body, limit)
}

// S3Config configures the S3 source. Credentials come from the default AWS
// chain (env vars, shared config, instance role).
type S3Config struct {
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
}

// S3Source reads s3://bucket/key URIs. The client is built on first use so
// a server without AWS configuration still starts.
type S3Source struct {
	cfg     S3Config
	once    sync.Once
	client  *s3.Client
	initErr error
}

// NewS3Source creates an S3 source.
func NewS3Source(cfg S3Config) *S3Source {
	return &S3Source{cfg: cfg}
}

func (s *S3Source) init(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		region := s.cfg.Region
		if region == "" {
			region = "eu-central-2"
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			s.initErr = fmt.Errorf("aws config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if s.cfg.PathStyle {
				o.UsePathStyle = true
			}
			if s.cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			}
		})
	})
	return s.client, s.initErr
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(loc string) (bucket, key string, err error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("not an s3 uri: %s", loc)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("missing object key: %s", loc)
	}
	return u.Host, key, nil
}

func (s *S3Source) Version(ctx context.Context, loc string) (string, error) {
	bucket, key, err := ParseS3URI(loc)
	if err != nil {
		return "", err
	}
	client, err := s.init(ctx)
	if err != nil {
		return "", err
	}
	out, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.ETag), nil
}

func (s *S3Source) Fetch(ctx context.Context, loc string, limit int64) ([]byte, error) {
	bucket, key, err := ParseS3URI(loc)
	if err != nil {
		return nil, err
	}
	client, err := s.init(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return readLimited(out.Body, limit)
}
