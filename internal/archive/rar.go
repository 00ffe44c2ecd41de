package archive

import (
	"io"
	"os"

	"github.com/nwaples/rardecode"
)

// extractRar spools the buffer to a temp file for the rar reader. The temp
// file is removed on every exit path, including reader failures mid-archive.
func extractRar(data []byte, opts Options) (*Result, error) {
	tmp, err := os.CreateTemp("", "docuscore-rar-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	rr, err := rardecode.OpenReader(tmp.Name(), "")
	if err != nil {
		return nil, ErrCorrupt
	}
	defer rr.Close()

	res := &Result{Parts: map[string]string{}}
	var total int64
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A corrupt trailing entry does not invalidate what was already
			// extracted; required parts are typically stored first.
			if len(res.Parts) > 0 {
				res.Truncated = true
				return res, nil
			}
			return nil, ErrCorrupt
		}
		if hdr.IsDir {
			continue
		}
		info := EntryInfo{Name: hdr.Name, Size: hdr.UnPackedSize}
		if !entrySafe(hdr.Name, opts.MaxDepth) {
			res.Entries = append(res.Entries, info)
			continue
		}
		if len(res.Parts) >= opts.MaxFiles || total+maxInt64(info.Size, 0) > opts.MaxTotalBytes {
			res.Truncated = true
			res.Entries = append(res.Entries, info)
			continue
		}
		content, err := io.ReadAll(io.LimitReader(rr, opts.MaxTotalBytes-total))
		if err != nil {
			res.Entries = append(res.Entries, info)
			continue
		}
		total += int64(len(content))
		res.Parts[hdr.Name] = string(content)
		info.Extracted = true
		res.Entries = append(res.Entries, info)
	}
	return res, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
