package growthcurve

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// GSReadSeekCloser decorates a Google Storage object handle with io.Reader,
// io.Seeker and io.Closer. Derived from
// https://github.com/googleapis/google-cloud-go/issues/1124#issuecomment-419070541
//
// Every seek drops the open range reader; the next Read opens a new one at
// the requested offset.
type GSReadSeekCloser struct {
	*storage.ObjectHandle
	Context context.Context
	Size    int64
	r       *storage.Reader
	pos     int64
}

func (s *GSReadSeekCloser) Read(buf []byte) (int, error) {
	if s.pos >= s.Size {
		return 0, io.EOF
	}

	var err error
	if s.r == nil {
		s.r, err = s.NewRangeReader(s.Context, s.pos, -1)
		if err != nil {
			return 0, err
		}
	}

	n, err := s.r.Read(buf)
	s.pos += int64(n)

	return n, err
}

func (s *GSReadSeekCloser) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.Size + offset
	default:
		return 0, fmt.Errorf("io.Seeker 'whence' value %d is not implemented", whence)
	}

	if newPos < 0 {
		return 0, fmt.Errorf("cannot seek to negative offset %d", newPos)
	}

	if newPos != s.pos && s.r != nil {
		s.r.Close()
		s.r = nil
	}
	s.pos = newPos

	return s.pos, nil
}

// Close releases any open range reader.
func (s *GSReadSeekCloser) Close() error {
	if s.r == nil {
		return nil
	}

	err := s.r.Close()
	s.r = nil

	return err
}

// MaybeOpenSeekerFromGoogleStorage opens path from Google Storage if it has a
// gs:// prefix and a client is available, and from the local filesystem
// otherwise. The second return value is the size of the object in bytes.
func MaybeOpenSeekerFromGoogleStorage(path string, client *storage.Client) (ReadSeekCloser, int64, error) {
	if client != nil && strings.HasPrefix(path, "gs://") {
		// Detect the bucket and the path to the actual file
		pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
		if len(pathParts) != 2 {
			return nil, 0, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
		}
		bucketName := pathParts[0]
		pathName := pathParts[1]

		// Open the bucket with default credentials
		bkt := client.Bucket(bucketName)
		handle := bkt.Object(pathName)

		wrappedHandle := &GSReadSeekCloser{
			ObjectHandle: handle,
			Context:      context.Background(),
		}

		// Make a hard call to get the filesize
		attrs, err := wrappedHandle.ObjectHandle.Attrs(wrappedHandle.Context)
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}
		wrappedHandle.Size = attrs.Size

		return wrappedHandle, attrs.Size, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fstat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fstat.Size(), nil
}
