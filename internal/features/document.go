package features

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/sync/errgroup"

	"github.com/docuscore/docuscore/internal/archive"
	"github.com/docuscore/docuscore/internal/xmlnav"
)

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	appPropsPart     = "docProps/app.xml"
)

var (
	headingStyleRe = regexp.MustCompile(`^(?:Heading|heading)([1-9])$`)
	headerPartRe   = regexp.MustCompile(`^word/header\d+\.xml$`)
	footerPartRe   = regexp.MustCompile(`^word/footer\d+\.xml$`)
	tocStyleRe     = regexp.MustCompile(`^TOC[1-9]?$`)
)

const charsPerPageEstimate = 1800

// ExtractDocument builds the word-processing feature model. Like the
// presentation extractor it always succeeds; an unparseable main part
// yields a synthesized, Degraded model.
func ExtractDocument(res *archive.Result, filename string, size int64) *DocumentFeatures {
	f := newDocumentFeatures(filename, size)
	if res == nil {
		synthesizeDocument(f)
		return f
	}
	doc := xmlnav.Parse(res.Parts[documentPart])
	if doc == nil {
		synthesizeDocument(f)
		return f
	}

	// Body content first, then the independent sections concurrently.
	extractBody(res, f, doc)

	var g errgroup.Group
	g.Go(func() error { extractDocHeaderFooter(res, f); return nil })
	g.Go(func() error { f.Export = extractExport(res, size); return nil })
	g.Go(func() error { f.Metadata = extractMetadata(res); return nil })
	g.Go(func() error { extractPageEstimate(res, f); return nil })
	_ = g.Wait()
	return f
}

func extractBody(res *archive.Result, f *DocumentFeatures, doc *etree.Document) {
	root := doc.Root()
	rels := parseRels(res.Parts[documentRelsPart])
	stylesSeen := map[string]struct{}{}

	for _, p := range xmlnav.FindElements(root, "w", "p") {
		text := xmlnav.ExtractText(p)
		style := paragraphStyle(p)
		f.Paragraphs = append(f.Paragraphs, Paragraph{Text: text, Style: style, Length: len(text)})
		if style != "" {
			stylesSeen[style] = struct{}{}
		}
		if m := headingStyleRe.FindStringSubmatch(style); m != nil {
			level, _ := strconv.Atoi(m[1])
			f.Headings = append(f.Headings, Heading{Level: level, Text: text})
		}
		if tocStyleRe.MatchString(style) {
			f.HasTOC = true
		}
	}
	f.ParagraphCount = len(f.Paragraphs)

	for style := range stylesSeen {
		f.StylesUsed = append(f.StylesUsed, style)
	}
	sort.Strings(f.StylesUsed)

	for _, link := range xmlnav.FindElements(root, "w", "hyperlink") {
		h := Hyperlink{Target: "Unknown Target"}
		if anchor, ok := xmlnav.Attr(link, "w:anchor"); ok && anchor != "" {
			h.Target = "#" + anchor
		} else if id, ok := xmlnav.Attr(link, "r:id"); ok {
			if rel, found := rels[id]; found {
				h.Target = rel.Target
				h.External = rel.external()
			}
		}
		f.Hyperlinks = append(f.Hyperlinks, h)
	}

	f.TableCount = len(xmlnav.FindElements(root, "w", "tbl"))
	f.ImageCount = len(xmlnav.FindElements(root, "w", "drawing")) +
		len(xmlnav.FindElements(root, "w", "pict"))
	f.Equations = len(xmlnav.FindElements(root, "m", "oMath")) +
		len(xmlnav.FindElements(root, "m", "oMathPara"))

	// A generated table of contents shows up as a TOC field instruction.
	for _, instr := range xmlnav.FindElements(root, "w", "instrText") {
		if strings.Contains(xmlnav.ExtractText(instr), "TOC") {
			f.HasTOC = true
			break
		}
	}
	if !f.HasTOC {
		for _, fld := range xmlnav.FindElements(root, "w", "fldSimple") {
			if instr, ok := xmlnav.Attr(fld, "w:instr"); ok && strings.Contains(instr, "TOC") {
				f.HasTOC = true
				break
			}
		}
	}
}

func paragraphStyle(p *etree.Element) string {
	pPr := xmlnav.FindElement(p, "w", "pPr")
	if pPr == nil {
		return ""
	}
	style := xmlnav.FindElement(pPr, "w", "pStyle")
	if style == nil {
		return ""
	}
	return xmlnav.AttrDefault(style, "w:val", "")
}

func extractDocHeaderFooter(res *archive.Result, f *DocumentFeatures) {
	hf := HeaderFooter{}
	for name, content := range res.Parts {
		isHeader := headerPartRe.MatchString(name)
		isFooter := footerPartRe.MatchString(name)
		if !isHeader && !isFooter {
			continue
		}
		doc := xmlnav.Parse(content)
		if doc == nil {
			continue
		}
		if isHeader {
			hf.HasHeader = true
		}
		if isFooter {
			hf.HasFooter = true
			if hf.FooterText == "" {
				hf.FooterText = xmlnav.ExtractText(doc.Root())
			}
		}
		for _, instr := range xmlnav.FindElements(doc.Root(), "w", "instrText") {
			if strings.Contains(xmlnav.ExtractText(instr), "PAGE") {
				hf.HasPageNumber = true
			}
			if strings.Contains(xmlnav.ExtractText(instr), "DATE") {
				hf.HasDate = true
			}
		}
	}
	f.HeaderFooter = hf
}

// extractPageEstimate prefers the page count recorded by the producing
// application, falling back to a character-count estimate.
func extractPageEstimate(res *archive.Result, f *DocumentFeatures) {
	if doc := xmlnav.Parse(res.Parts[appPropsPart]); doc != nil {
		if el := xmlnav.FindElement(doc.Root(), "", "Pages"); el != nil {
			if n, err := strconv.Atoi(xmlnav.ExtractText(el)); err == nil && n > 0 {
				f.PageEstimate = n
				return
			}
		}
	}
	chars := 0
	for _, p := range f.Paragraphs {
		chars += p.Length
	}
	f.PageEstimate = chars/charsPerPageEstimate + 1
}
