package growthcurve

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

// ErrUnixCompress is returned for LZW (.Z) input, which has no reader here.
var ErrUnixCompress = errors.New("unix compress (.Z) input is not supported; recompress with gzip")

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType attempts to detect the data type of a stream by checking
// against a set of known data types.  Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
//
// Inputs shorter than the longest signature are compared only over the bytes
// that were actually read, so a tiny plain-text export is not misreported.
func DetectDataType(r io.Reader) (DataType, error) {
	buff := make([]byte, 6)
	n, err := io.ReadFull(r, buff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return DataTypeInvalid, err
	}
	buff = buff[:n]

	// Match known signatures
Outer:
	for dt, sig := range byteCodeSigs {
		if len(sig) > len(buff) {
			continue
		}
		for position := range sig {
			if buff[position] != sig[position] {
				continue Outer
			}
		}
		return dt, nil
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompressReadCloserFromFile sniffs the compression of f and returns a
// reader over the decompressed bytes. f is rewound to its start before the
// decompressor is attached, so the caller should not have consumed it.
func MaybeDecompressReadCloserFromFile(f ReadSeekCloser) (io.ReadCloser, error) {
	dt, err := DetectDataType(f)
	if err != nil {
		return nil, err
	}

	// Reset your original reader
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch dt {
	case DataTypeGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &stackedReadCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case DataTypeZip:
		// Only the first entry of an archive is read.
		zr := zipstream.NewReader(f)
		if _, err := zr.Next(); errors.Is(err, io.EOF) {
			return &stackedReadCloser{Reader: bytes.NewReader(nil), closers: []io.Closer{f}}, nil
		} else if err != nil {
			return nil, err
		}
		return &stackedReadCloser{Reader: zr, closers: []io.Closer{f}}, nil
	case DataTypeBZip2:
		return &stackedReadCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	case DataTypeXZ:
		reader, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		return &stackedReadCloser{Reader: reader, closers: []io.Closer{f}}, nil
	case DataTypeZ:
		return nil, ErrUnixCompress
	}

	// No data type detected. For now, we assume this is uncompressed.
	return f, nil
}

// stackedReadCloser closes the decompressor and then the underlying source.
type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *stackedReadCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
