// Package archive extracts zip and rar submission containers into a map of
// named text parts, enforcing path, extension and size limits before any
// entry content is materialized.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path"
	"strings"
)

type Format string

const (
	FormatZip Format = "zip"
	FormatRar Format = "rar"
)

var (
	ErrTooSmall     = errors.New("archive: buffer too small to be a container")
	ErrBadSignature = errors.New("archive: signature does not match declared format")
	ErrCorrupt      = errors.New("archive: container is structurally corrupt")
)

// Options bound what extraction is willing to materialize.
type Options struct {
	MaxTotalBytes int64 // total extracted content across all parts
	MaxFiles      int   // number of extracted parts
	MaxDepth      int   // path nesting depth ("a/b/c.xml" has depth 3)
}

// DefaultOptions matches the limits used by the grading service.
func DefaultOptions() Options {
	return Options{
		MaxTotalBytes: 50 << 20,
		MaxFiles:      512,
		MaxDepth:      8,
	}
}

// EntryInfo describes one container entry, whether or not its content was
// extracted. Skipped entries still matter to feature extraction (an exported
// PDF next to the document is detected by name and size alone).
type EntryInfo struct {
	Name      string
	Size      int64
	Extracted bool
}

// Result is a successful (possibly truncated) extraction.
type Result struct {
	Parts     map[string]string
	Entries   []EntryInfo
	Truncated bool // a size or count limit stopped extraction early
}

// Entry returns the info for a named entry, if the container had one.
func (r *Result) Entry(name string) (EntryInfo, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return EntryInfo{}, false
}

var allowedExtensions = map[string]struct{}{
	".xml":  {},
	".rels": {},
	".txt":  {},
	".json": {},
}

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	rarMagic4 = []byte{'R', 'a', 'r', '!', 0x1a, 0x07, 0x00}
	rarMagic5 = []byte{'R', 'a', 'r', '!', 0x1a, 0x07, 0x01, 0x00}
)

// Extract validates data against the declared format and extracts it.
// Hitting a limit stops extraction without error; whatever was extracted
// before the limit is returned with Truncated set.
func Extract(data []byte, format Format, opts Options) (*Result, error) {
	if len(data) < len(zipMagic) {
		return nil, ErrTooSmall
	}
	switch format {
	case FormatZip:
		if !bytes.HasPrefix(data, zipMagic) {
			return nil, ErrBadSignature
		}
		return extractZip(data, opts)
	case FormatRar:
		if !bytes.HasPrefix(data, rarMagic4) && !bytes.HasPrefix(data, rarMagic5) {
			return nil, ErrBadSignature
		}
		return extractRar(data, opts)
	default:
		return nil, ErrBadSignature
	}
}

// Sniff guesses the container format from the magic number.
func Sniff(data []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatZip, true
	case bytes.HasPrefix(data, rarMagic4), bytes.HasPrefix(data, rarMagic5):
		return FormatRar, true
	default:
		return "", false
	}
}

func extractZip(data []byte, opts Options) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ErrCorrupt
	}
	res := &Result{Parts: map[string]string{}}
	var total int64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		info := EntryInfo{Name: f.Name, Size: int64(f.UncompressedSize64)}
		if !entrySafe(f.Name, opts.MaxDepth) {
			res.Entries = append(res.Entries, info)
			continue
		}
		if len(res.Parts) >= opts.MaxFiles || total+info.Size > opts.MaxTotalBytes {
			res.Truncated = true
			res.Entries = append(res.Entries, info)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			res.Entries = append(res.Entries, info)
			continue
		}
		content, err := io.ReadAll(io.LimitReader(rc, opts.MaxTotalBytes-total))
		rc.Close()
		if err != nil {
			res.Entries = append(res.Entries, info)
			continue
		}
		total += int64(len(content))
		res.Parts[f.Name] = string(content)
		info.Extracted = true
		res.Entries = append(res.Entries, info)
	}
	return res, nil
}

// entrySafe rejects traversal paths, absolute paths, disallowed extensions
// and over-deep nesting. Rejection is per entry; the rest of the container
// is still processed.
func entrySafe(name string, maxDepth int) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return false
	}
	if len(name) > 1 && name[1] == ':' { // windows drive prefix
		return false
	}
	norm := strings.ReplaceAll(name, "\\", "/")
	for _, seg := range strings.Split(norm, "/") {
		if seg == ".." {
			return false
		}
	}
	if _, ok := allowedExtensions[strings.ToLower(path.Ext(norm))]; !ok {
		return false
	}
	if maxDepth > 0 && strings.Count(norm, "/")+1 > maxDepth {
		return false
	}
	return true
}
