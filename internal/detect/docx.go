package detect

import (
	"strings"

	"github.com/docuscore/docuscore/internal/features"
)

// Word-document detectors.

func init() {
	Register("docx.length", Func(detectLength))
	Register("docx.headings", Func(detectHeadings))
	Register("docx.styles", Func(detectStyles))
	Register("docx.header_footer", Func(detectDocHeaderFooter))
	Register("docx.toc", Func(detectTOC))
	Register("docx.tables", Func(detectDocTables))
	Register("docx.images", Func(detectImages))
	Register("docx.equations", Func(detectEquations))
	Register("docx.hyperlinks", Func(detectDocHyperlinks))
	Register("docx.pdf_export", alias("common.pdf_export"))
}

func detectLength(f *features.FileFeatures) Verdict {
	d := document(f)
	if d == nil {
		return verdict(false, 0, "len_0", "document is empty")
	}
	switch {
	case d.PageEstimate >= 2:
		return verdict(true, 1, "len_2", "two or more pages of content")
	case d.ParagraphCount >= 3:
		return verdict(true, 0.5, "len_1", "about one page of content")
	default:
		return verdict(false, 0, "len_0", "document is empty")
	}
}

func detectHeadings(f *features.FileFeatures) Verdict {
	d := document(f)
	if d == nil || len(d.Headings) == 0 {
		return verdict(false, 0, "head_0", "no headings")
	}
	levels := map[int]struct{}{}
	for _, h := range d.Headings {
		levels[h.Level] = struct{}{}
	}
	if len(levels) >= 2 {
		return verdict(true, 1.5, "head_2", "heading hierarchy with multiple levels")
	}
	return verdict(true, 0.75, "head_1", "headings at a single level")
}

// detectStyles only counts named styles beyond the heading and TOC styles
// the other criteria already reward.
func detectStyles(f *features.FileFeatures) Verdict {
	d := document(f)
	if d == nil {
		return verdict(false, 0, "style_0", "default styles only")
	}
	for _, s := range d.StylesUsed {
		if strings.HasPrefix(s, "Heading") || strings.HasPrefix(s, "heading") || strings.HasPrefix(s, "TOC") {
			continue
		}
		return verdict(true, 1, "style_1", "named styles applied")
	}
	return verdict(false, 0, "style_0", "default styles only")
}

func detectDocHeaderFooter(f *features.FileFeatures) Verdict {
	d := document(f)
	if d == nil {
		return verdict(false, 0, "hf_0", "no header or footer")
	}
	hf := d.HeaderFooter
	if hf.HasHeader && hf.HasFooter && hf.HasPageNumber {
		return verdict(true, 1, "hf_2", "header, footer and page numbers present")
	}
	if hf.HasHeader || hf.HasFooter {
		return verdict(true, 0.5, "hf_1", "header or footer present")
	}
	return verdict(false, 0, "hf_0", "no header or footer")
}

func detectTOC(f *features.FileFeatures) Verdict {
	d := document(f)
	if d != nil && d.HasTOC {
		return verdict(true, 1, "toc_1", "generated table of contents")
	}
	return verdict(false, 0, "toc_0", "no table of contents")
}

func detectDocTables(f *features.FileFeatures) Verdict {
	d := document(f)
	if d != nil && d.TableCount >= 1 {
		return verdict(true, 1, "tbl_1", "table present")
	}
	return verdict(false, 0, "tbl_0", "no tables")
}

func detectImages(f *features.FileFeatures) Verdict {
	d := document(f)
	if d != nil && d.ImageCount >= 1 {
		return verdict(true, 1, "img_1", "image present")
	}
	return verdict(false, 0, "img_0", "no images")
}

func detectEquations(f *features.FileFeatures) Verdict {
	d := document(f)
	if d != nil && d.Equations >= 1 {
		return verdict(true, 1, "eq_1", "formula present")
	}
	return verdict(false, 0, "eq_0", "no formulas")
}

func detectDocHyperlinks(f *features.FileFeatures) Verdict {
	d := document(f)
	if d == nil {
		return verdict(false, 0, "link_0", "no hyperlinks")
	}
	return hyperlinkTiers(d.Hyperlinks)
}
