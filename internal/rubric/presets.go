package rubric

import "fmt"

// Built-in rubrics, addressable by name. Custom rubrics supplied by the
// caller take the same shape; these are the defaults seeded for new sites.

func presetPresentation() Rubric {
	return Rubric{
		Name:           "presentation-default",
		Version:        "1.0",
		FileType:       FileTypePresentation,
		TotalMaxPoints: 10,
		Rounding:       RoundHalfUpQuarter,
		Criteria: []Criterion{
			{
				ID: "structure", Name: "Slide structure", DetectorKey: "pptx.slide_count", MaxPoints: 1,
				Levels: []Level{
					{Name: "struct_0", Points: 0, Description: "fewer than 3 slides"},
					{Name: "struct_1", Points: 0.5, Description: "3-5 slides"},
					{Name: "struct_2", Points: 1, Description: "6 or more slides"},
				},
			},
			{
				ID: "theme", Name: "Custom theme", DetectorKey: "pptx.theme", MaxPoints: 1,
				Levels: []Level{
					{Name: "theme_0", Points: 0, Description: "default theme"},
					{Name: "theme_1", Points: 0.5, Description: "custom theme"},
					{Name: "theme_2", Points: 1, Description: "custom theme with colour and font schemes"},
				},
			},
			{
				ID: "master", Name: "Slide master", DetectorKey: "pptx.master", MaxPoints: 1,
				Levels: []Level{
					{Name: "master_0", Points: 0, Description: "master untouched"},
					{Name: "master_1", Points: 1, Description: "master modified"},
				},
			},
			{
				ID: "header_footer", Name: "Header and footer", DetectorKey: "pptx.header_footer", MaxPoints: 1,
				Levels: []Level{
					{Name: "hf_0", Points: 0, Description: "none"},
					{Name: "hf_1", Points: 0.5, Description: "footer or slide number"},
					{Name: "hf_2", Points: 1, Description: "footer, slide number and date"},
				},
			},
			{
				ID: "hyperlinks", Name: "Hyperlinks", DetectorKey: "pptx.hyperlinks", MaxPoints: 1,
				Levels: []Level{
					{Name: "link_0", Points: 0, Description: "none"},
					{Name: "link_1", Points: 0.5, Description: "internal links only"},
					{Name: "link_2", Points: 1, Description: "at least one external link"},
				},
			},
			{
				ID: "transitions", Name: "Slide transitions", DetectorKey: "pptx.transitions", MaxPoints: 1,
				Levels: []Level{
					{Name: "trans_0", Points: 0, Description: "none"},
					{Name: "trans_1", Points: 0.5, Description: "one transition type"},
					{Name: "trans_2", Points: 1, Description: "varied transitions"},
				},
			},
			{
				ID: "animations", Name: "Animations", DetectorKey: "pptx.animations", MaxPoints: 1,
				Levels: []Level{
					{Name: "anim_0", Points: 0, Description: "none"},
					{Name: "anim_1", Points: 0.5, Description: "single effect type"},
					{Name: "anim_2", Points: 1, Description: "several effects of different types"},
				},
			},
			{
				ID: "objects", Name: "Embedded objects", DetectorKey: "pptx.objects", MaxPoints: 1.5,
				Levels: []Level{
					{Name: "obj_0", Points: 0, Description: "none"},
					{Name: "obj_1", Points: 0.75, Description: "one object kind"},
					{Name: "obj_2", Points: 1.5, Description: "images plus charts or tables"},
				},
			},
			{
				ID: "outline", Name: "Outline structure", DetectorKey: "pptx.outline", MaxPoints: 1,
				Levels: []Level{
					{Name: "outline_0", Points: 0, Description: "no outline"},
					{Name: "outline_1", Points: 0.5, Description: "titled slides, flat"},
					{Name: "outline_2", Points: 1, Description: "titled slides with nesting"},
				},
			},
			{
				ID: "pdf_export", Name: "PDF export", DetectorKey: "pptx.pdf_export", MaxPoints: 0.5,
				Levels: []Level{
					{Name: "pdf_0", Points: 0, Description: "no exported PDF"},
					{Name: "pdf_1", Points: 0.5, Description: "exported PDF present"},
				},
			},
		},
	}
}

func presetDocument() Rubric {
	return Rubric{
		Name:           "document-default",
		Version:        "1.0",
		FileType:       FileTypeDocument,
		TotalMaxPoints: 10,
		Rounding:       RoundHalfUpQuarter,
		Criteria: []Criterion{
			{
				ID: "length", Name: "Document length", DetectorKey: "docx.length", MaxPoints: 1,
				Levels: []Level{
					{Name: "len_0", Points: 0, Description: "under one page"},
					{Name: "len_1", Points: 0.5, Description: "one page"},
					{Name: "len_2", Points: 1, Description: "two or more pages"},
				},
			},
			{
				ID: "headings", Name: "Heading hierarchy", DetectorKey: "docx.headings", MaxPoints: 1.5,
				Levels: []Level{
					{Name: "head_0", Points: 0, Description: "no headings"},
					{Name: "head_1", Points: 0.75, Description: "single heading level"},
					{Name: "head_2", Points: 1.5, Description: "two or more heading levels"},
				},
			},
			{
				ID: "styles", Name: "Named styles", DetectorKey: "docx.styles", MaxPoints: 1,
				Levels: []Level{
					{Name: "style_0", Points: 0, Description: "defaults only"},
					{Name: "style_1", Points: 1, Description: "named styles applied"},
				},
			},
			{
				ID: "header_footer", Name: "Header and footer", DetectorKey: "docx.header_footer", MaxPoints: 1,
				Levels: []Level{
					{Name: "hf_0", Points: 0, Description: "none"},
					{Name: "hf_1", Points: 0.5, Description: "header or footer"},
					{Name: "hf_2", Points: 1, Description: "header, footer and page numbers"},
				},
			},
			{
				ID: "toc", Name: "Table of contents", DetectorKey: "docx.toc", MaxPoints: 1,
				Levels: []Level{
					{Name: "toc_0", Points: 0, Description: "absent"},
					{Name: "toc_1", Points: 1, Description: "generated table of contents"},
				},
			},
			{
				ID: "tables", Name: "Tables", DetectorKey: "docx.tables", MaxPoints: 1,
				Levels: []Level{
					{Name: "tbl_0", Points: 0, Description: "none"},
					{Name: "tbl_1", Points: 1, Description: "at least one table"},
				},
			},
			{
				ID: "images", Name: "Images", DetectorKey: "docx.images", MaxPoints: 1,
				Levels: []Level{
					{Name: "img_0", Points: 0, Description: "none"},
					{Name: "img_1", Points: 1, Description: "at least one image"},
				},
			},
			{
				ID: "equations", Name: "Equations", DetectorKey: "docx.equations", MaxPoints: 1,
				Levels: []Level{
					{Name: "eq_0", Points: 0, Description: "none"},
					{Name: "eq_1", Points: 1, Description: "at least one formula"},
				},
			},
			{
				ID: "hyperlinks", Name: "Hyperlinks", DetectorKey: "docx.hyperlinks", MaxPoints: 1,
				Levels: []Level{
					{Name: "link_0", Points: 0, Description: "none"},
					{Name: "link_1", Points: 0.5, Description: "internal links only"},
					{Name: "link_2", Points: 1, Description: "at least one external link"},
				},
			},
			{
				ID: "pdf_export", Name: "PDF export", DetectorKey: "docx.pdf_export", MaxPoints: 0.5,
				Levels: []Level{
					{Name: "pdf_0", Points: 0, Description: "no exported PDF"},
					{Name: "pdf_1", Points: 0.5, Description: "exported PDF present"},
				},
			},
		},
	}
}

// Preset returns a built-in rubric by name.
func Preset(name string) (Rubric, error) {
	switch name {
	case "presentation-default":
		return presetPresentation(), nil
	case "document-default":
		return presetDocument(), nil
	default:
		return Rubric{}, fmt.Errorf("unknown preset rubric %q", name)
	}
}

// Presets lists the built-in rubrics.
func Presets() []Rubric {
	return []Rubric{presetPresentation(), presetDocument()}
}
