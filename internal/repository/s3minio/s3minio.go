package s3minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrNotConfigured = errors.New("price list storage is not configured")
	ErrNotFound      = errors.New("price list not found")
)

type Config struct {
	Host      string `yaml:"host" env:"HOST"`
	Port      string `yaml:"port" env:"PORT" env-default:"9000"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"USE_SSL" env-default:"false"`
	Bucket    string `yaml:"bucket" env:"BUCKET" env-default:"price-lists"`
	Prefix    string `yaml:"prefix" env:"PREFIX"`
}

func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Enabled reports whether price lists are served at all.
func (c *Config) Enabled() bool {
	return c.Host != ""
}

func NewConn(ctx context.Context, config *Config) (*minio.Client, error) {
	minioClient, err := minio.New(
		config.Endpoint(), &minio.Options{
			Creds: credentials.NewStaticV4(
				config.AccessKey,
				config.SecretKey,
				"",
			),
			Secure: config.UseSSL,
		},
	)
	if err != nil {
		return nil, err
	}

	exists, err := minioClient.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", config.Bucket)
	}

	return minioClient, nil
}

// documentExtensions are the file types offered to users.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".xlsx": true,
	".xls":  true,
	".docx": true,
	".doc":  true,
	".jpg":  true,
	".png":  true,
}

// IsPriceList reports whether an object key looks like a price-list document.
func IsPriceList(key string) bool {
	if strings.HasSuffix(key, "/") {
		return false
	}
	return documentExtensions[strings.ToLower(path.Ext(key))]
}

// PriceListRepository serves price-list documents from one bucket.
// A nil Session means the storage is not configured.
type PriceListRepository struct {
	log     *slog.Logger
	Session *minio.Client
	bucket  string
	prefix  string
}

func New(log *slog.Logger, sess *minio.Client, config *Config) *PriceListRepository {
	return &PriceListRepository{
		log:     log,
		Session: sess,
		bucket:  config.Bucket,
		prefix:  config.Prefix,
	}
}

// List returns document names relative to the prefix, sorted.
func (s *PriceListRepository) List(ctx context.Context) ([]string, error) {
	const op = "s3minio.PriceListRepository.List"

	if s == nil || s.Session == nil {
		return nil, ErrNotConfigured
	}

	var names []string
	for object := range s.Session.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, object.Err)
		}
		if !IsPriceList(object.Key) {
			continue
		}
		names = append(names, strings.TrimPrefix(object.Key, s.prefix))
	}

	sort.Strings(names)

	return names, nil
}

// Get downloads one document by the name returned from List.
func (s *PriceListRepository) Get(ctx context.Context, name string) ([]byte, error) {
	const op = "s3minio.PriceListRepository.Get"

	if s == nil || s.Session == nil {
		return nil, ErrNotConfigured
	}
	if !IsPriceList(name) || strings.Contains(name, "..") {
		return nil, ErrNotFound
	}

	object, err := s.Session.GetObject(ctx, s.bucket, s.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("price list loaded",
		slog.String("op", op),
		slog.String("name", name),
		slog.Int("size", len(data)),
	)

	return data, nil
}
