package fetch

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/pkg/errors"
)

// ObjectStoreConfig holds S3-compatible object storage parameters for
// deployments that publish dataset and embedding resources to a bucket
// instead of a plain HTTP server.
type ObjectStoreConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`

	// Prefix is prepended to every resource name inside the bucket.
	Prefix string `mapstructure:"prefix"`
}

// objectAPI is the slice of the minio client the fetcher needs; tests
// substitute a fake.
type objectAPI interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

type objectFetcher struct {
	client objectAPI
	bucket string
	prefix string
	log    logging.Logger
}

// NewObjectFetcher builds a Fetcher over an S3-compatible bucket.
func NewObjectFetcher(cfg ObjectStoreConfig, log logging.Logger) (Fetcher, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.Validation("object store fetcher requires endpoint and bucket")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create object store client")
	}
	log.Info("object store fetcher ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket))
	return &objectFetcher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log,
	}, nil
}

func (f *objectFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := strings.TrimLeft(name, "/")
	if f.prefix != "" {
		key = f.prefix + "/" + key
	}

	obj, err := f.client.GetObject(ctx, f.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "object fetch failed").WithDetail(key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Cancelled("fetch cancelled").WithCause(err)
		}
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, errors.NotFound("object not found").WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "object read failed").WithDetail(key)
	}
	return data, nil
}
