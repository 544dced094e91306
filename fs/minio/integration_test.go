package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/fstest"
)

const testBucket = "test-bucket"

// setupMinIOContainer starts a MinIO container and returns a client for it.
func setupMinIOContainer(t *testing.T) *minio.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	minioC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start MinIO container")
	t.Cleanup(func() { _ = minioC.Terminate(ctx) })

	endpoint, err := minioC.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get container endpoint")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err, "failed to create MinIO client")
	require.NoError(t, client.MakeBucket(ctx, testBucket, minio.MakeBucketOptions{}))
	return client
}

func TestIntegration_Conformance(t *testing.T) {
	client := setupMinIOContainer(t)
	var n atomic.Int64

	fstest.TestSuiteWithConfig(t, func() (core.Backend, string) {
		m, err := NewMinIO(Config{Client: client})
		require.NoError(t, err)
		return m, fmt.Sprintf("%s/suite-%d", testBucket, n.Add(1))
	}, fstest.S3TestConfig())
}

func TestIntegration_StreamingUpload(t *testing.T) {
	client := setupMinIOContainer(t)
	ctx := context.Background()

	m, err := NewMinIO(Config{Client: client, MultipartThreshold: 1024})
	require.NoError(t, err)

	payload := strings.Repeat("0123456789", 1000)
	w, err := m.Create(ctx, testBucket+"/big/object.bin")
	require.NoError(t, err)
	_, err = io.Copy(w, strings.NewReader(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	info, err := m.Stat(ctx, testBucket+"/big/object.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), info.Size())

	ok, err := m.IsDir(ctx, testBucket+"/big")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntegration_AbortStreamingUpload(t *testing.T) {
	client := setupMinIOContainer(t)
	ctx := context.Background()

	m, err := NewMinIO(Config{Client: client, MultipartThreshold: 16})
	require.NoError(t, err)

	w, err := m.Create(ctx, testBucket+"/aborted.bin")
	require.NoError(t, err)
	_, err = io.WriteString(w, strings.Repeat("x", 64))
	require.NoError(t, err)
	require.NoError(t, w.(core.Aborter).Abort())

	ok, err := m.Exists(ctx, testBucket+"/aborted.bin")
	require.NoError(t, err)
	assert.False(t, ok)
}
