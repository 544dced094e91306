package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"

	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/minio/internal/errs"
)

var errAborted = errors.New("upload aborted")

// File is a write stream to one object. Writes are buffered until the
// multipart threshold, after which the buffer and all further writes stream
// through a pipe into a background PutObject.
type File struct {
	ctx    context.Context
	fs     *MinioFS
	bucket string
	key    string
	name   string // path as given to Create

	buffer       *bytes.Buffer  // accumulates writes for small files
	pipeW        *io.PipeWriter // streaming writer once threshold exceeded
	putRes       chan error     // result from background PutObject when streaming
	bytesWritten int64
	closed       bool
}

func newFileWrite(ctx context.Context, mfs *MinioFS, bucket, key, name string) *File {
	return &File{
		ctx:    ctx,
		fs:     mfs,
		bucket: bucket,
		key:    key,
		name:   name,
		buffer: new(bytes.Buffer),
	}
}

func (f *File) threshold() int64 {
	if f.fs == nil || f.fs.multipartThreshold <= 0 {
		return defaultMultipartThreshold
	}
	return f.fs.multipartThreshold
}

// transitionToStreaming starts the background upload and flushes the
// buffer into it.
func (f *File) transitionToStreaming(p []byte) (int, error) {
	pr, pw := io.Pipe()
	f.pipeW = pw
	f.putRes = make(chan error, 1)

	go func() {
		_, err := f.fs.client.PutObject(f.ctx, f.bucket, f.key, pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		_ = pr.CloseWithError(err)
		f.putRes <- errs.Translate(err)
		close(f.putRes)
	}()

	if f.buffer.Len() > 0 {
		if _, err := f.pipeW.Write(f.buffer.Bytes()); err != nil {
			return 0, errs.PathError("write", f.name, err)
		}
	}
	f.buffer = nil

	n, err := f.pipeW.Write(p)
	f.bytesWritten += int64(n)
	if err != nil {
		return n, errs.PathError("write", f.name, err)
	}
	return n, nil
}

// Write appends p to the object.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errs.PathError("write", f.name, fs.ErrClosed)
	}

	if f.pipeW != nil {
		n, err := f.pipeW.Write(p)
		f.bytesWritten += int64(n)
		if err != nil {
			return n, errs.PathError("write", f.name, err)
		}
		return n, nil
	}

	// Unit tests run without a client and keep everything buffered.
	if int64(f.buffer.Len()+len(p)) <= f.threshold() || f.fs == nil || f.fs.client == nil {
		n, err := f.buffer.Write(p)
		f.bytesWritten += int64(n)
		return n, err
	}

	return f.transitionToStreaming(p)
}

// Close finishes the upload. Nothing is visible in the bucket before Close
// returns successfully.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.pipeW != nil {
		_ = f.pipeW.Close()
		if err := <-f.putRes; err != nil {
			return errs.PathError("close", f.name, err)
		}
		return nil
	}

	if f.fs == nil || f.fs.client == nil {
		return nil
	}
	_, err := f.fs.client.PutObject(f.ctx, f.bucket, f.key,
		bytes.NewReader(f.buffer.Bytes()), int64(f.buffer.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return errs.PathError("close", f.name, errs.Translate(err))
	}
	f.fs.logger.DebugContext(f.ctx, "uploaded object", "bucket", f.bucket, "key", f.key, "bytes", f.bytesWritten)
	return nil
}

// Abort drops buffered data and cancels a running multipart upload.
func (f *File) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.pipeW != nil {
		_ = f.pipeW.CloseWithError(errAborted)
		<-f.putRes
	}
	f.buffer = nil
	return nil
}

// Size returns the number of bytes written so far.
func (f *File) Size() int64 {
	return f.bytesWritten
}

// streamingFile reads an object without buffering it in memory.
type streamingFile struct {
	obj    *minio.Object
	name   string
	closed bool
}

// Read reads up to len(p) bytes into p from the streaming object.
func (f *streamingFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, errs.PathError("read", f.name, fs.ErrClosed)
	}
	n, err := f.obj.Read(p)

	// Only return EOF when no data is read
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errs.PathError("read", f.name, errs.Translate(err))
	}
	return n, err
}

// Close closes the streaming file and releases resources.
func (f *streamingFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.obj.Close()
}

// Compile-time interface checks.
var (
	_ io.WriteCloser = (*File)(nil)
	_ core.Aborter   = (*File)(nil)
	_ io.ReadCloser  = (*streamingFile)(nil)
)
