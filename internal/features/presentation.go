package features

import (
	"fmt"
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
	presentationPart = "ppt/presentation.xml"
	unknownLayout    = "Unknown Layout"
)

var (
	slidePartRe  = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	themePartRe  = regexp.MustCompile(`^ppt/theme/theme\d+\.xml$`)
	masterPartRe = regexp.MustCompile(`^ppt/slideMasters/slideMaster\d+\.xml$`)
	layoutPartRe = regexp.MustCompile(`^ppt/slideLayouts/slideLayout\d+\.xml$`)
)

// defaultThemeNames are stock theme names that do not count as custom.
var defaultThemeNames = map[string]struct{}{
	"":             {},
	"Office Theme": {},
	"Office":       {},
	"Тема Office":  {},
}

// ExtractPresentation builds the presentation feature model. It always
// returns a populated model: when the main part cannot be parsed the model
// is synthesized from the filename and byte size and marked Degraded.
func ExtractPresentation(res *archive.Result, filename string, size int64) *PresentationFeatures {
	f := newPresentationFeatures(filename, size)
	if res == nil {
		synthesizePresentation(f)
		return f
	}
	presDoc := xmlnav.Parse(res.Parts[presentationPart])
	if presDoc == nil {
		synthesizePresentation(f)
		return f
	}

	// Slides first: outline heuristics consult slide titles.
	names := slidePartNames(res)
	slideDocs := extractSlides(res, names, f)

	// The remaining sections read disjoint parts and write disjoint fields,
	// so they can run concurrently.
	var g errgroup.Group
	g.Go(func() error { extractTheme(res, f); return nil })
	g.Go(func() error { extractMaster(res, f); return nil })
	g.Go(func() error { extractSlideHeaderFooter(res, f, slideDocs); return nil })
	g.Go(func() error { extractSlideContent(res, f, slideDocs, names); return nil })
	g.Go(func() error { f.Export = extractExport(res, size); return nil })
	g.Go(func() error { f.Metadata = extractMetadata(res); return nil })
	g.Go(func() error { extractOutline(f); return nil })
	_ = g.Wait()
	return f
}

// slidePartNames returns slide part names in slide-number order.
func slidePartNames(res *archive.Result) []string {
	var names []string
	for name := range res.Parts {
		if slidePartRe.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return slideNumber(names[i]) < slideNumber(names[j])
	})
	return names
}

func slideNumber(name string) int {
	m := slidePartRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func extractSlides(res *archive.Result, names []string, f *PresentationFeatures) []*etree.Document {
	docs := make([]*etree.Document, 0, len(names))
	for i, name := range names {
		doc := xmlnav.Parse(res.Parts[name])
		docs = append(docs, doc)
		slide := Slide{Index: i + 1, TitleDepth: 1, LayoutName: unknownLayout}
		if doc != nil {
			raw := slideTitle(doc.Root())
			slide.Title = strings.TrimSpace(raw)
			slide.TitleDepth = titleDepth(raw)
			slide.TextLength = len(xmlnav.ExtractText(doc.Root()))
		}
		if layout := resolveLayout(res, name); layout != "" {
			slide.LayoutName = layout
		}
		notesName := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", slideNumber(name))
		if _, ok := res.Parts[notesName]; ok {
			slide.HasNotes = true
		}
		f.Slides = append(f.Slides, slide)
	}
	f.SlideCount = len(f.Slides)
	return docs
}

// slideTitle returns the raw (untrimmed) title text. Leading whitespace is
// meaningful: it encodes outline nesting by convention.
func slideTitle(root *etree.Element) string {
	for _, sp := range xmlnav.FindElements(root, "p", "sp") {
		ph := xmlnav.FindElement(sp, "p", "ph")
		if ph == nil {
			continue
		}
		typ := xmlnav.AttrDefault(ph, "type", "")
		if typ == "title" || typ == "ctrTitle" {
			if body := xmlnav.FindElement(sp, "p", "txBody"); body != nil {
				return xmlnav.RawText(body)
			}
		}
	}
	// No title placeholder: fall back to the first short text shape.
	for _, sp := range xmlnav.FindElements(root, "p", "sp") {
		if body := xmlnav.FindElement(sp, "p", "txBody"); body != nil {
			raw := xmlnav.RawText(body)
			if t := strings.TrimSpace(raw); t != "" && len(t) <= 80 {
				return raw
			}
		}
	}
	return ""
}

// titleDepth reads outline nesting from leading whitespace: one tab or two
// spaces per extra level.
func titleDepth(raw string) int {
	depth := 1
	spaces := 0
	for _, r := range raw {
		switch r {
		case '\t':
			depth++
		case ' ':
			spaces++
		default:
			return depth + spaces/2
		}
	}
	return depth + spaces/2
}

// resolveLayout maps a slide to its layout name through the slide's .rels
// part. Unresolvable relationships degrade to "" (the caller keeps the
// Unknown Layout marker).
func resolveLayout(res *archive.Result, slidePart string) string {
	for _, rel := range slideRels(res, slidePart) {
		if rel.isType("slideLayout") {
			return layoutNameFromTarget(rel.Target)
		}
	}
	return ""
}

// slideRels parses the .rels part that accompanies a slide part.
func slideRels(res *archive.Result, slidePart string) map[string]relationship {
	relsName := fmt.Sprintf("ppt/slides/_rels/%s.rels", strings.TrimPrefix(slidePart, "ppt/slides/"))
	return parseRels(res.Parts[relsName])
}

func extractTheme(res *archive.Result, f *PresentationFeatures) {
	var names []string
	for name := range res.Parts {
		if themePartRe.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return
	}
	doc := xmlnav.Parse(res.Parts[names[0]])
	if doc == nil {
		return
	}
	name := xmlnav.AttrDefault(doc.Root(), "name", "")
	_, stock := defaultThemeNames[name]
	f.Theme = Theme{
		Name:           name,
		IsCustom:       !stock,
		HasColorScheme: xmlnav.FindElement(doc.Root(), "a", "clrScheme") != nil,
		HasFontScheme:  xmlnav.FindElement(doc.Root(), "a", "fontScheme") != nil,
	}
}

func extractMaster(res *archive.Result, f *PresentationFeatures) {
	layouts := 0
	for name := range res.Parts {
		if layoutPartRe.MatchString(name) {
			layouts++
		}
	}
	f.Master.LayoutCount = layouts
	for name := range res.Parts {
		if masterPartRe.MatchString(name) && xmlnav.Parse(res.Parts[name]) != nil {
			f.Master.Modified = true
			return
		}
	}
}

// extractSlideHeaderFooter reads the p:hf flags from the master and footer
// placeholders from the slides themselves.
func extractSlideHeaderFooter(res *archive.Result, f *PresentationFeatures, slideDocs []*etree.Document) {
	hf := HeaderFooter{}
	for name := range res.Parts {
		if !masterPartRe.MatchString(name) {
			continue
		}
		doc := xmlnav.Parse(res.Parts[name])
		if doc == nil {
			continue
		}
		if el := xmlnav.FindElement(doc.Root(), "p", "hf"); el != nil {
			hf.HasPageNumber = hf.HasPageNumber || xmlnav.AttrDefault(el, "sldNum", "0") == "1"
			hf.HasFooter = hf.HasFooter || xmlnav.AttrDefault(el, "ftr", "0") == "1"
			hf.HasDate = hf.HasDate || xmlnav.AttrDefault(el, "dt", "0") == "1"
		}
	}
	for _, doc := range slideDocs {
		if doc == nil {
			continue
		}
		for _, ph := range xmlnav.FindElements(doc.Root(), "p", "ph") {
			switch xmlnav.AttrDefault(ph, "type", "") {
			case "ftr":
				hf.HasFooter = true
				if hf.FooterText == "" {
					hf.FooterText = footerText(ph)
				}
			case "sldNum":
				hf.HasPageNumber = true
			case "dt":
				hf.HasDate = true
			}
		}
	}
	f.HeaderFooter = hf
}

// footerText walks up from the placeholder to its shape and extracts the
// shape text.
func footerText(ph *etree.Element) string {
	for el := ph; el != nil; el = el.Parent() {
		if el.Tag == "sp" {
			if body := xmlnav.FindElement(el, "p", "txBody"); body != nil {
				return xmlnav.ExtractText(body)
			}
			return ""
		}
	}
	return ""
}

// extractSlideContent gathers hyperlinks, transitions, animations, objects,
// tables and equations from the already-parsed slide documents.
func extractSlideContent(res *archive.Result, f *PresentationFeatures, slideDocs []*etree.Document, names []string) {
	for i, doc := range slideDocs {
		if doc == nil {
			continue
		}
		idx := i + 1
		root := doc.Root()

		rels := slideRels(res, names[i])
		for _, link := range xmlnav.FindElements(root, "a", "hlinkClick") {
			h := Hyperlink{SlideIndex: idx, Target: "Unknown Target"}
			if id, ok := xmlnav.Attr(link, "r:id"); ok {
				if rel, found := rels[id]; found {
					h.Target = rel.Target
					h.External = rel.external()
				}
			}
			f.Hyperlinks = append(f.Hyperlinks, h)
		}

		if tr := xmlnav.FindElement(root, "p", "transition"); tr != nil {
			typ := "cut"
			if kids := tr.ChildElements(); len(kids) > 0 {
				typ = kids[0].Tag
			}
			f.Transitions = append(f.Transitions, Transition{SlideIndex: idx, Type: typ})
		}

		if timing := xmlnav.FindElement(root, "p", "timing"); timing != nil {
			var walk func(e *etree.Element)
			walk = func(e *etree.Element) {
				if strings.HasPrefix(e.Tag, "anim") {
					f.Animations = append(f.Animations, Animation{
						SlideIndex: idx,
						Type:       e.Tag,
						Effect:     xmlnav.AttrDefault(e, "filter", ""),
					})
				}
				for _, c := range e.ChildElements() {
					walk(c)
				}
			}
			walk(timing)
		}

		for _, pic := range xmlnav.FindElements(root, "p", "pic") {
			name := ""
			if nv := xmlnav.FindElement(pic, "p", "cNvPr"); nv != nil {
				name = xmlnav.AttrDefault(nv, "name", "")
			}
			f.Objects = append(f.Objects, Object{Kind: "image", Name: name})
		}
		for _, frame := range xmlnav.FindElements(root, "p", "graphicFrame") {
			f.Objects = append(f.Objects, Object{Kind: graphicKind(frame), Name: frameName(frame)})
		}
		for range xmlnav.FindElements(root, "p", "oleObj") {
			f.Objects = append(f.Objects, Object{Kind: "ole"})
		}

		f.TableCount += len(xmlnav.FindElements(root, "a", "tbl"))
		f.Equations += len(xmlnav.FindElements(root, "m", "oMath"))
	}
}

func graphicKind(frame *etree.Element) string {
	data := xmlnav.FindElement(frame, "a", "graphicData")
	if data == nil {
		return "graphic"
	}
	uri := xmlnav.AttrDefault(data, "uri", "")
	switch {
	case strings.Contains(uri, "/chart"):
		return "chart"
	case strings.Contains(uri, "/table"):
		return "table"
	case strings.Contains(uri, "/ole"):
		return "ole"
	case strings.Contains(uri, "/diagram"):
		return "diagram"
	default:
		return "graphic"
	}
}

func frameName(frame *etree.Element) string {
	if nv := xmlnav.FindElement(frame, "p", "cNvPr"); nv != nil {
		return xmlnav.AttrDefault(nv, "name", "")
	}
	return ""
}

// extractOutline runs after slides are populated. An outline requires at
// least 3 titled slides and at least one title nested below the top level.
func extractOutline(f *PresentationFeatures) {
	titled := 0
	maxDepth := 0
	for _, s := range f.Slides {
		if s.Title == "" {
			continue
		}
		titled++
		if s.TitleDepth > maxDepth {
			maxDepth = s.TitleDepth
		}
	}
	f.Outline = Outline{
		TitledSlides: titled,
		MaxDepth:     maxDepth,
		Present:      titled >= 3 && maxDepth > 1,
	}
}
