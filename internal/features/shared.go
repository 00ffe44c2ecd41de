package features

import (
	"strings"

	"github.com/docuscore/docuscore/internal/archive"
	"github.com/docuscore/docuscore/internal/xmlnav"
)

const corePropsPart = "docProps/core.xml"

// pdfBytesPerPage is the rough size of one exported page. The PDF itself
// is never extracted (its extension is outside the allow-list), so the
// page count is estimated from the entry size alone.
const pdfBytesPerPage = 40 * 1024

// extractExport looks for an exported PDF shipped in the same container.
func extractExport(res *archive.Result, fallbackSize int64) Export {
	for _, e := range res.Entries {
		if !strings.HasSuffix(strings.ToLower(e.Name), ".pdf") {
			continue
		}
		size := e.Size
		if size <= 0 {
			size = fallbackSize
		}
		pages := int(size/pdfBytesPerPage) + 1
		if pages > 500 {
			pages = 500
		}
		return Export{HasPDFExport: true, PDFPageCount: pages}
	}
	return Export{}
}

// extractMetadata reads docProps/core.xml. Missing or malformed core
// properties degrade to empty strings.
func extractMetadata(res *archive.Result) Metadata {
	doc := xmlnav.Parse(res.Parts[corePropsPart])
	if doc == nil {
		return Metadata{}
	}
	meta := Metadata{}
	if el := xmlnav.FindElement(doc.Root(), "dc", "title"); el != nil {
		meta.Title = xmlnav.ExtractText(el)
	}
	if el := xmlnav.FindElement(doc.Root(), "dc", "creator"); el != nil {
		meta.Author = xmlnav.ExtractText(el)
	}
	return meta
}
