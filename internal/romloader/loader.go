// Package romloader reads cartridge images from disk, unpacking them from
// ZIP, 7z, RAR, gzip or tar.gz archives when needed.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extensions lists the file names accepted as cartridge images.
var Extensions = []string{".gb", ".gbc", ".bin"}

// Maximum image size. The largest MBC1 image is 2MB; anything bigger is refused.
const maxImageSize = 8 * 1024 * 1024

var (
	// ErrNoImage is returned when an archive contains no cartridge image
	ErrNoImage = errors.New("no cartridge image found in archive")

	// ErrUnsupportedFormat is returned for files that are neither a raw
	// image nor a known archive
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrTooLarge is returned when the image exceeds maxImageSize
	ErrTooLarge = errors.New("image exceeds maximum size")
)

// Format is the container detected for a file
type Format int

const (
	FormatUnknown Format = iota
	FormatRaw
	FormatZIP
	Format7z
	FormatGzip
	FormatRAR
)

var magics = []struct {
	prefix []byte
	format Format
}{
	{[]byte{0x50, 0x4B, 0x03, 0x04}, FormatZIP},
	{[]byte{0x50, 0x4B, 0x05, 0x06}, FormatZIP},
	{[]byte{0x52, 0x61, 0x72, 0x21}, FormatRAR},
	{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, Format7z},
	{[]byte{0x1F, 0x8B}, FormatGzip},
}

// Load reads the cartridge image at path. Archives are detected by magic
// bytes first and file extension second; the first entry whose name carries
// one of Extensions is returned. It returns the image bytes and the base name
// of the file the image came from.
func Load(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read header: %w", err)
	}

	switch Detect(header[:n], path) {
	case FormatRaw:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to seek: %w", err)
		}
		data, err := readLimited(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
		return data, filepath.Base(path), nil
	case FormatZIP:
		return fromZIP(path)
	case Format7z:
		return from7z(path)
	case FormatGzip:
		return fromGzip(path)
	case FormatRAR:
		return fromRAR(path)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Detect classifies a file from its leading bytes and its name.
func Detect(header []byte, path string) Format {
	for _, m := range magics {
		if bytes.HasPrefix(header, m.prefix) {
			return m.format
		}
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZIP
	case strings.HasSuffix(lower, ".7z"):
		return Format7z
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatGzip
	case strings.HasSuffix(lower, ".rar"):
		return FormatRAR
	}

	if isImageName(lower) {
		return FormatRaw
	}
	return FormatUnknown
}

func isImageName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
