package detect

import "github.com/docuscore/docuscore/internal/features"

func init() {
	Register("common.pdf_export", Func(detectPDFExport))
}

// exportOf pulls the export descriptor from whichever variant is populated.
func exportOf(f *features.FileFeatures) features.Export {
	if p := presentation(f); p != nil {
		return p.Export
	}
	if d := document(f); d != nil {
		return d.Export
	}
	return features.Export{}
}

func detectPDFExport(f *features.FileFeatures) Verdict {
	exp := exportOf(f)
	if exp.HasPDFExport && exp.PDFPageCount >= 1 {
		v := verdict(true, 0.5, "pdf_1", "exported PDF present")
		v.Details = map[string]int{"pdf_page_count": exp.PDFPageCount}
		return v
	}
	return verdict(false, 0, "pdf_0", "no exported PDF found")
}
