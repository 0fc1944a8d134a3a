// Package archive reads images out of zip and compressed tar archives without
// unpacking them to disk.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/palettesniffer/internal/image"
)

// MaxEntrySize is the largest archive member that will be read.
const MaxEntrySize = 64 << 20

// ErrEntryTooLarge is returned for members larger than MaxEntrySize.
var ErrEntryTooLarge = errors.New("archive entry exceeds size limit")

// Entry is an image read from an archive.
type Entry struct {
	// Name is the member path inside the archive.
	Name string
	Data []byte
}

type format int

const (
	formatNone format = iota
	formatTarGz
	formatTarXz
	formatTarBz2
	formatZip
)

func detect(name string) format {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return formatTarGz
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return formatTarXz
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz"), strings.HasSuffix(name, ".tbz2"):
		return formatTarBz2
	case strings.HasSuffix(name, ".zip"):
		return formatZip
	}
	return formatNone
}

// IsArchive reports whether name has a supported archive extension.
func IsArchive(name string) bool {
	return detect(name) != formatNone
}

// ReadFile reads the archive at path and returns its images.
func ReadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified archive path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return Images(data, path)
}

// Images returns the members of an archive that have a supported image
// extension, in archive order. name selects the format by extension.
func Images(data []byte, name string) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	switch detect(name) {
	case formatTarGz:
		var gzr *gzip.Reader
		gzr, err = gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		entries, err = fromTar(gzr)
	case formatTarXz:
		var xzr *xz.Reader
		xzr, err = xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		entries, err = fromTar(xzr)
	case formatTarBz2:
		entries, err = fromTar(bzip2.NewReader(bytes.NewReader(data)))
	case formatZip:
		entries, err = fromZip(data)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", name)
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no supported image files found in archive: %s", name)
	}
	return entries, nil
}

func fromTar(r io.Reader) ([]Entry, error) {
	tr := tar.NewReader(r)
	var entries []Entry
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !image.IsImageFile(header.Name) {
			continue
		}
		data, err := readLimited(tr, header.Name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: header.Name, Data: data})
	}
}

func fromZip(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip archive: %w", err)
	}
	var entries []Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !image.IsImageFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		data, err := readLimited(rc, f.Name)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: f.Name, Data: data})
	}
	return entries, nil
}

// readLimited reads a member, failing once it passes MaxEntrySize.
func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > MaxEntrySize {
		return nil, fmt.Errorf("%w: %s", ErrEntryTooLarge, name)
	}
	return data, nil
}
