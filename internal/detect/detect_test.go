package detect

import (
	"reflect"
	"testing"

	"github.com/docuscore/docuscore/internal/features"
)

func presFeatures(p *features.PresentationFeatures) *features.FileFeatures {
	return &features.FileFeatures{Kind: features.KindPresentation, Presentation: p}
}

func docFeatures(d *features.DocumentFeatures) *features.FileFeatures {
	return &features.FileFeatures{Kind: features.KindDocument, Document: d}
}

func evaluate(t *testing.T, key string, f *features.FileFeatures) Verdict {
	t.Helper()
	d, err := MustLookup(key)
	if err != nil {
		t.Fatalf("lookup %s: %v", key, err)
	}
	return d.Evaluate(f)
}

func TestDetectPDFExport(t *testing.T) {
	v := evaluate(t, "pptx.pdf_export", presFeatures(&features.PresentationFeatures{
		Export: features.Export{HasPDFExport: true, PDFPageCount: 5},
	}))
	if !v.Passed || v.Points != 0.5 || v.Level != "pdf_1" {
		t.Errorf("with export: %+v", v)
	}

	v = evaluate(t, "pptx.pdf_export", presFeatures(&features.PresentationFeatures{}))
	if v.Passed || v.Points != 0 || v.Level != "pdf_0" {
		t.Errorf("without export: %+v", v)
	}
}

func TestPDFExportDelegationIsTransparent(t *testing.T) {
	f := presFeatures(&features.PresentationFeatures{
		Export: features.Export{HasPDFExport: true, PDFPageCount: 3},
	})
	shared := evaluate(t, "common.pdf_export", f)
	forPptx := evaluate(t, "pptx.pdf_export", f)
	forDocx := evaluate(t, "docx.pdf_export", f)
	if !reflect.DeepEqual(shared, forPptx) {
		t.Errorf("pptx delegation differs: %+v vs %+v", forPptx, shared)
	}
	if !reflect.DeepEqual(shared, forDocx) {
		t.Errorf("docx delegation differs: %+v vs %+v", forDocx, shared)
	}
}

func TestDetectTheme(t *testing.T) {
	v := evaluate(t, "pptx.theme", presFeatures(&features.PresentationFeatures{
		Theme: features.Theme{Name: "Office Theme", IsCustom: false},
	}))
	if v.Passed || v.Points != 0 || v.Level != "theme_0" {
		t.Errorf("default theme: %+v", v)
	}

	v = evaluate(t, "pptx.theme", presFeatures(&features.PresentationFeatures{
		Theme: features.Theme{Name: "My Theme", IsCustom: true, HasColorScheme: true, HasFontScheme: true},
	}))
	if !v.Passed || v.Points != 1 || v.Level != "theme_2" {
		t.Errorf("full custom theme: %+v", v)
	}

	v = evaluate(t, "pptx.theme", presFeatures(&features.PresentationFeatures{
		Theme: features.Theme{Name: "My Theme", IsCustom: true},
	}))
	if v.Level != "theme_1" || v.Points != 0.5 {
		t.Errorf("custom theme without schemes: %+v", v)
	}
}

func TestDetectAnimations(t *testing.T) {
	twoTypes := make([]features.Animation, 5)
	for i := range twoTypes {
		twoTypes[i] = features.Animation{SlideIndex: i + 1, Type: "animEffect"}
	}
	twoTypes[4].Type = "animMotion"

	v := evaluate(t, "pptx.animations", presFeatures(&features.PresentationFeatures{Animations: twoTypes}))
	if v.Points != 1 || v.Level != "anim_2" {
		t.Errorf("5 animations, 2 types: %+v", v)
	}

	oneType := make([]features.Animation, 5)
	for i := range oneType {
		oneType[i] = features.Animation{SlideIndex: i + 1, Type: "animEffect"}
	}
	v = evaluate(t, "pptx.animations", presFeatures(&features.PresentationFeatures{Animations: oneType}))
	if v.Points != 0.5 || v.Level != "anim_1" {
		t.Errorf("5 animations, 1 type: %+v", v)
	}

	v = evaluate(t, "pptx.animations", presFeatures(&features.PresentationFeatures{Animations: []features.Animation{}}))
	if v.Passed || v.Points != 0 || v.Level != "anim_0" {
		t.Errorf("no animations: %+v", v)
	}
}

func TestDetectorsAreNilSafe(t *testing.T) {
	for _, key := range Keys() {
		d, _ := Lookup(key)
		for _, f := range []*features.FileFeatures{
			nil,
			{},
			presFeatures(nil),
			docFeatures(nil),
		} {
			v := d.Evaluate(f)
			if v.Passed || v.Points != 0 {
				t.Errorf("%s on empty features: %+v, want lowest tier", key, v)
			}
		}
	}
}

func TestDetectorsAreIdempotent(t *testing.T) {
	f := presFeatures(&features.PresentationFeatures{
		SlideCount: 7,
		Theme:      features.Theme{IsCustom: true, HasColorScheme: true, HasFontScheme: true},
		Hyperlinks: []features.Hyperlink{{Target: "https://x", External: true}},
		Export:     features.Export{HasPDFExport: true, PDFPageCount: 2},
	})
	for _, key := range []string{"pptx.slide_count", "pptx.theme", "pptx.hyperlinks", "pptx.pdf_export"} {
		first := evaluate(t, key, f)
		second := evaluate(t, key, f)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s not idempotent: %+v vs %+v", key, first, second)
		}
	}
}

func TestDetectHeadings(t *testing.T) {
	v := evaluate(t, "docx.headings", docFeatures(&features.DocumentFeatures{
		Headings: []features.Heading{{Level: 1, Text: "A"}, {Level: 2, Text: "B"}},
	}))
	if v.Points != 1.5 || v.Level != "head_2" {
		t.Errorf("two levels: %+v", v)
	}
	v = evaluate(t, "docx.headings", docFeatures(&features.DocumentFeatures{
		Headings: []features.Heading{{Level: 1, Text: "A"}, {Level: 1, Text: "B"}},
	}))
	if v.Points != 0.75 || v.Level != "head_1" {
		t.Errorf("one level: %+v", v)
	}
}

func TestDetectStylesIgnoresHeadingStyles(t *testing.T) {
	v := evaluate(t, "docx.styles", docFeatures(&features.DocumentFeatures{
		StylesUsed: []string{"Heading1", "Heading2", "TOC1"},
	}))
	if v.Passed {
		t.Errorf("heading-only styles should not pass: %+v", v)
	}
	v = evaluate(t, "docx.styles", docFeatures(&features.DocumentFeatures{
		StylesUsed: []string{"Heading1", "Quote"},
	}))
	if !v.Passed || v.Level != "style_1" {
		t.Errorf("named style should pass: %+v", v)
	}
}

func TestUnknownDetectorKey(t *testing.T) {
	if _, err := MustLookup("pptx.nope"); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
	if _, ok := Lookup("pptx.nope"); ok {
		t.Fatal("Lookup returned ok for an unknown key")
	}
}
