package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
)

// ObjectStore archives payloads to an S3-compatible bucket via minio.
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
	now    func() time.Time
}

// Options configures an ObjectStore.
type Options struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewObjectStore builds an S3 archiver. Endpoint and bucket are required.
func NewObjectStore(opts Options) (*ObjectStore, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, eris.New("archive: endpoint and bucket are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "archive: create object store client")
	}

	return &ObjectStore{
		client: client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		now:    time.Now,
	}, nil
}

func (s *ObjectStore) Enabled() bool { return true }

// objectKey builds the archive key: {prefix}{hint}-{unixtime}-{sha256[:8]}.json
func objectKey(prefix, hint string, ts int64, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s-%d-%x.json", prefix, hint, ts, sum[:8])
}

// PutRecord writes the payload under a content-addressed key.
func (s *ObjectStore) PutRecord(ctx context.Context, payload []byte, hint string) (string, error) {
	key := objectKey(s.prefix, hint, s.now().Unix(), payload)

	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", eris.Wrapf(err, "archive: put object %s", key)
	}
	return key, nil
}
