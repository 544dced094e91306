package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/minio/internal/errs"
	"github.com/amphancm/olmocr/fs/minio/internal/pathutil"
	"github.com/amphancm/olmocr/fs/minio/internal/types"
	"github.com/amphancm/olmocr/internal/globmatch"
)

const defaultMultipartThreshold = 5 * 1024 * 1024

// MinioFS implements core.Backend for MinIO/S3-compatible storage. Paths
// are "bucket/key"; directories are key prefixes.
//
//nolint:revive // MinioFS name is intentional to match naming pattern across fs implementations
type MinioFS struct {
	client             *minio.Client
	multipartThreshold int64
	logger             *slog.Logger
}

// NewMinIO creates a MinIO-backed filesystem.
// Returns error if configuration is invalid.
func NewMinIO(cfg Config) (*MinioFS, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  newCredentials(cfg),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	threshold := cfg.MultipartThreshold
	if threshold == 0 {
		threshold = defaultMultipartThreshold
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &MinioFS{
		client:             client,
		multipartThreshold: threshold,
		logger:             logger,
	}, nil
}

// newCredentials uses static keys when configured and falls back to the
// usual AWS lookup chain otherwise.
func newCredentials(cfg Config) *credentials.Credentials {
	if cfg.AccessKey != "" {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{},
	})
}

// Type returns FSTypeRemote.
func (m *MinioFS) Type() core.FSType {
	return core.FSTypeRemote
}

// split returns bucket and key of name or an error for an empty bucket.
func split(op, name string) (string, string, error) {
	bucket, key := pathutil.Split(name)
	if bucket == "" {
		return "", "", errs.PathError(op, name, core.ErrInvalid)
	}
	return bucket, key, nil
}

// Stat returns metadata for an object, or a directory description for a
// bucket or a non-empty key prefix.
func (m *MinioFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	bucket, key, err := split("stat", name)
	if err != nil {
		return nil, err
	}

	if key != "" {
		info, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return types.NewFileInfo(path.Base(key), info.Size, info.LastModified), nil
		}
		if terr := errs.Translate(err); !errors.Is(terr, fs.ErrNotExist) {
			return nil, errs.PathError("stat", name, terr)
		}
	}

	ok, err := m.hasPrefix(ctx, bucket, key)
	if err != nil {
		return nil, errs.PathError("stat", name, err)
	}
	if !ok {
		return nil, errs.PathError("stat", name, fs.ErrNotExist)
	}
	return types.NewDirInfo(path.Base(pathutil.Join(bucket, key))), nil
}

// hasPrefix reports whether anything is stored under key in bucket. The
// bucket itself counts when key is empty.
func (m *MinioFS) hasPrefix(ctx context.Context, bucket, key string) (bool, error) {
	if key == "" {
		ok, err := m.client.BucketExists(ctx, bucket)
		return ok, errs.Translate(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for object := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:  pathutil.DirPrefix(key),
		MaxKeys: 1,
	}) {
		if object.Err != nil {
			terr := errs.Translate(object.Err)
			if errors.Is(terr, fs.ErrNotExist) {
				return false, nil
			}
			return false, terr
		}
		return true, nil
	}
	return false, nil
}

// Exists reports whether the named object or prefix exists.
func (m *MinioFS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether name is a bucket or a non-empty key prefix.
func (m *MinioFS) IsDir(ctx context.Context, name string) (bool, error) {
	bucket, key, err := split("isdir", name)
	if err != nil {
		return false, err
	}
	ok, err := m.hasPrefix(ctx, bucket, key)
	if err != nil {
		return false, errs.PathError("isdir", name, err)
	}
	return ok, nil
}

// IsFile reports whether name is an object.
func (m *MinioFS) IsFile(ctx context.Context, name string) (bool, error) {
	bucket, key, err := split("isfile", name)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, nil
	}
	_, err = m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if terr := errs.Translate(err); !errors.Is(terr, fs.ErrNotExist) {
		return false, errs.PathError("isfile", name, terr)
	}
	return false, nil
}

// Glob lists keys under the literal prefix of pattern and returns the
// matching objects and key prefixes. The bucket segment must be literal.
func (m *MinioFS) Glob(ctx context.Context, pattern string) ([]string, error) {
	pattern = pathutil.Normalize(pattern)
	matcher, err := globmatch.Compile(pattern)
	if err != nil {
		return nil, errs.PathError("glob", pattern, core.ErrInvalid)
	}

	if !matcher.HasMeta() {
		ok, err := m.Exists(ctx, matcher.Prefix())
		if err != nil || !ok {
			return nil, err
		}
		return []string{matcher.Prefix()}, nil
	}

	first, _, _ := strings.Cut(pattern, "/")
	if globmatch.HasMeta(first) {
		return nil, errs.PathError("glob", pattern, fmt.Errorf("%w: wildcard bucket names", core.ErrUnsupported))
	}
	bucket, key := pathutil.Split(matcher.Prefix())

	base := pathutil.DirPrefix(key)
	recursive := matcher.Recursive() ||
		strings.Count(pattern, "/") > strings.Count(matcher.Prefix(), "/")+1

	seen := make(map[string]bool)
	var matches []string
	consider := func(k string) {
		p := pathutil.Join(bucket, strings.TrimSuffix(k, "/"))
		if seen[p] {
			return
		}
		seen[p] = true
		if matcher.Match(p) {
			matches = append(matches, p)
		}
	}

	for object := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    base,
		Recursive: recursive,
	}) {
		if object.Err != nil {
			terr := errs.Translate(object.Err)
			if errors.Is(terr, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, errs.PathError("glob", pattern, terr)
		}
		if recursive {
			for _, dir := range pathutil.Ancestors(base, object.Key) {
				consider(dir)
			}
		}
		consider(object.Key)
	}

	slices.Sort(matches)
	m.logger.DebugContext(ctx, "glob listed", "bucket", bucket, "prefix", base, "matches", len(matches))
	return matches, nil
}

// Open opens the named object for streaming reads.
func (m *MinioFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key, err := split("open", name)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errs.PathError("open", name, core.ErrIsDir)
	}

	if _, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		terr := errs.Translate(err)
		if errors.Is(terr, fs.ErrNotExist) {
			if ok, _ := m.hasPrefix(ctx, bucket, key); ok {
				return nil, errs.PathError("open", name, core.ErrIsDir)
			}
		}
		return nil, errs.PathError("open", name, terr)
	}

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.PathError("open", name, errs.Translate(err))
	}
	return &streamingFile{obj: obj, name: name}, nil
}

// Create opens a write stream to the named object. Small objects are
// uploaded on Close; larger ones stream as a multipart upload.
func (m *MinioFS) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	bucket, key, err := split("create", name)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errs.PathError("create", name, core.ErrIsDir)
	}
	return newFileWrite(ctx, m, bucket, key, name), nil
}

// MkdirAll is a no-op: S3 directories exist implicitly.
func (m *MinioFS) MkdirAll(ctx context.Context, name string, _ bool) error {
	_, _, err := split("mkdir", name)
	if err != nil {
		return err
	}
	return ctx.Err()
}

// Remove deletes an object, or every object under a prefix when recursive
// is set.
func (m *MinioFS) Remove(ctx context.Context, name string, recursive bool) error {
	bucket, key, err := split("remove", name)
	if err != nil {
		return err
	}

	if key != "" {
		_, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if err == nil {
			if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
				return errs.PathError("remove", name, errs.Translate(err))
			}
			return nil
		}
		if terr := errs.Translate(err); !errors.Is(terr, fs.ErrNotExist) {
			return errs.PathError("remove", name, terr)
		}
	}

	ok, err := m.hasPrefix(ctx, bucket, key)
	if err != nil {
		return errs.PathError("remove", name, err)
	}
	if !ok {
		return errs.PathError("remove", name, fs.ErrNotExist)
	}
	if !recursive {
		return errs.PathError("remove", name, core.ErrIsDir)
	}
	return m.removeAll(ctx, bucket, key, name)
}

// removeAll deletes every object under key using the batch API.
func (m *MinioFS) removeAll(ctx context.Context, bucket, key, name string) error {
	prefix := pathutil.DirPrefix(key)
	objectsCh := make(chan minio.ObjectInfo, 100)

	var listErr error
	go func() {
		defer close(objectsCh)
		for object := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	var errList []error
	for rerr := range m.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			errList = append(errList, rerr.Err)
		}
	}

	if listErr != nil {
		return errs.PathError("remove", name, errs.Translate(listErr))
	}
	if len(errList) > 0 {
		return errs.PathError("remove", name, errs.Translate(errList[0]))
	}
	m.logger.DebugContext(ctx, "removed prefix", "bucket", bucket, "prefix", prefix)
	return nil
}

// Compile-time interface check.
var _ core.Backend = (*MinioFS)(nil)
