// Package verify checks downloaded archives.
package verify

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrNested is returned when an archive entry carries directory components.
var ErrNested = errors.New("verify: entry is not flattened")

// Entry is a file stored in an archive.
type Entry struct {
	Name string
	Size int64
	Data []byte
}

// Archive reads every entry of the zip in r, checking CRCs along the way.
// If keepData is false, Entry.Data is left nil.
func Archive(r io.ReaderAt, size int64, keepData bool) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.Contains(f.Name, "/") {
			return nil, fmt.Errorf("%w: %s", ErrNested, f.Name)
		}

		data, err := readEntry(f, keepData)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", f.Name, err)
		}

		entries = append(entries, Entry{
			Name: f.Name,
			Size: int64(f.UncompressedSize64),
			Data: data,
		})
	}

	return entries, nil
}

func readEntry(f *zip.File, keepData bool) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if keepData {
		return io.ReadAll(rc)
	}
	_, err = io.Copy(io.Discard, rc)
	return nil, err
}
