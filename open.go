package growthcurve

import (
	"bufio"
	"bytes"
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Open returns a reader over the (possibly compressed, possibly remote)
// contents of path. Closing it closes the underlying file or object.
func Open(path string, client *storage.Client) (io.ReadCloser, error) {
	f, _, err := MaybeOpenSeekerFromGoogleStorage(ExpandHome(path), client)
	if err != nil {
		return nil, pfx.Err(err)
	}

	r, err := MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	return r, nil
}

// Latin1Reader decodes r as ISO-8859-1. Every byte maps to a code point, so
// decoding never fails; UTF-8 text outside ASCII comes through garbled but
// the ASCII structure of a plate-reader export survives. A leading UTF-8 byte
// order mark is discarded first so it cannot corrupt the first field.
func Latin1Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	return charset.NewReaderLabel("latin1", br)
}
