package features

import "strings"

// Fallback synthesis. When the main part of a package cannot be parsed the
// extractor still returns a model, estimated from the filename and byte
// size, with Degraded set. A degraded model keeps the grading pipeline
// alive but its values are guesses; consumers must read extractor success
// as "a feature model exists", never as "the file was understood".

const bytesPerSlideEstimate = 30 * 1024

// objectHints maps filename fragments to object kinds for degraded models.
var objectHints = []struct {
	fragment string
	kind     string
}{
	{"chart", "chart"},
	{"diagram", "diagram"},
	{"table", "table"},
	{"tbl", "table"},
	{"img", "image"},
	{"image", "image"},
	{"pic", "image"},
	{"photo", "image"},
}

func synthesizePresentation(f *PresentationFeatures) {
	f.Degraded = true
	count := int(f.FileSize/bytesPerSlideEstimate) + 1
	if count > 50 {
		count = 50
	}
	f.SlideCount = count
	f.Slides = make([]Slide, count)
	for i := range f.Slides {
		f.Slides[i] = Slide{Index: i + 1, TitleDepth: 1, LayoutName: unknownLayout}
	}
	f.Objects = hintedObjects(f.Filename)
}

func synthesizeDocument(f *DocumentFeatures) {
	f.Degraded = true
	paragraphs := int(f.FileSize/2048) + 1
	if paragraphs > 200 {
		paragraphs = 200
	}
	f.ParagraphCount = paragraphs
	f.Paragraphs = make([]Paragraph, paragraphs)
	f.PageEstimate = paragraphs/8 + 1
	for _, o := range hintedObjects(f.Filename) {
		switch o.Kind {
		case "image":
			f.ImageCount++
		case "table":
			f.TableCount++
		}
	}
}

func hintedObjects(filename string) []Object {
	low := strings.ToLower(filename)
	out := []Object{}
	for _, h := range objectHints {
		if strings.Contains(low, h.fragment) {
			out = append(out, Object{Kind: h.kind, Name: h.fragment})
		}
	}
	return out
}
