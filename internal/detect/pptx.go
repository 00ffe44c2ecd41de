package detect

import "github.com/docuscore/docuscore/internal/features"

// Presentation detectors. Each runs its tiers strictest-first and falls
// through to the implicit "nothing detected" tier.

func init() {
	Register("pptx.slide_count", Func(detectSlideCount))
	Register("pptx.theme", Func(detectTheme))
	Register("pptx.master", Func(detectMaster))
	Register("pptx.header_footer", Func(detectSlideHeaderFooter))
	Register("pptx.hyperlinks", Func(detectSlideHyperlinks))
	Register("pptx.transitions", Func(detectTransitions))
	Register("pptx.animations", Func(detectAnimations))
	Register("pptx.objects", Func(detectObjects))
	Register("pptx.outline", Func(detectOutline))
	Register("pptx.tables", Func(detectSlideTables))
	Register("pptx.pdf_export", alias("common.pdf_export"))
}

func detectSlideCount(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil {
		return verdict(false, 0, "struct_0", "no slides found")
	}
	switch {
	case p.SlideCount >= 6:
		return verdict(true, 1, "struct_2", "six or more slides")
	case p.SlideCount >= 3:
		return verdict(true, 0.5, "struct_1", "three to five slides")
	default:
		return verdict(false, 0, "struct_0", "fewer than three slides")
	}
}

func detectTheme(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil || !p.Theme.IsCustom {
		return verdict(false, 0, "theme_0", "default theme in use")
	}
	if p.Theme.HasColorScheme && p.Theme.HasFontScheme {
		return verdict(true, 1, "theme_2", "custom theme with colour and font schemes")
	}
	return verdict(true, 0.5, "theme_1", "custom theme applied")
}

func detectMaster(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p != nil && p.Master.Modified {
		return verdict(true, 1, "master_1", "slide master modified")
	}
	return verdict(false, 0, "master_0", "slide master untouched")
}

func detectSlideHeaderFooter(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil {
		return verdict(false, 0, "hf_0", "no footer elements")
	}
	hf := p.HeaderFooter
	if hf.HasFooter && hf.HasPageNumber && hf.HasDate {
		return verdict(true, 1, "hf_2", "footer, slide number and date present")
	}
	if hf.HasFooter || hf.HasPageNumber {
		return verdict(true, 0.5, "hf_1", "partial footer elements")
	}
	return verdict(false, 0, "hf_0", "no footer elements")
}

func detectSlideHyperlinks(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil {
		return verdict(false, 0, "link_0", "no hyperlinks")
	}
	return hyperlinkTiers(p.Hyperlinks)
}

func hyperlinkTiers(links []features.Hyperlink) Verdict {
	if len(links) == 0 {
		return verdict(false, 0, "link_0", "no hyperlinks")
	}
	for _, h := range links {
		if h.External {
			return verdict(true, 1, "link_2", "external hyperlink present")
		}
	}
	return verdict(true, 0.5, "link_1", "internal hyperlinks only")
}

func detectTransitions(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil || len(p.Transitions) == 0 {
		return verdict(false, 0, "trans_0", "no slide transitions")
	}
	types := map[string]struct{}{}
	for _, tr := range p.Transitions {
		types[tr.Type] = struct{}{}
	}
	if len(types) >= 2 {
		return verdict(true, 1, "trans_2", "varied slide transitions")
	}
	return verdict(true, 0.5, "trans_1", "single transition type")
}

func detectAnimations(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil || len(p.Animations) == 0 {
		return verdict(false, 0, "anim_0", "no animations")
	}
	types := map[string]struct{}{}
	for _, a := range p.Animations {
		types[a.Type] = struct{}{}
	}
	if len(p.Animations) >= 3 && len(types) >= 2 {
		return verdict(true, 1, "anim_2", "several animation effects of different types")
	}
	return verdict(true, 0.5, "anim_1", "animations of a single type")
}

func detectObjects(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil || len(p.Objects) == 0 {
		return verdict(false, 0, "obj_0", "no embedded objects")
	}
	kinds := map[string]struct{}{}
	for _, o := range p.Objects {
		kinds[o.Kind] = struct{}{}
	}
	_, hasImage := kinds["image"]
	_, hasChart := kinds["chart"]
	_, hasTable := kinds["table"]
	if hasImage && (hasChart || hasTable) {
		return verdict(true, 1.5, "obj_2", "images combined with charts or tables")
	}
	return verdict(true, 0.75, "obj_1", "one kind of embedded object")
}

func detectOutline(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p == nil {
		return verdict(false, 0, "outline_0", "no outline structure")
	}
	if p.Outline.Present {
		return verdict(true, 1, "outline_2", "nested outline across titled slides")
	}
	if p.Outline.TitledSlides >= 3 {
		return verdict(true, 0.5, "outline_1", "titled slides without nesting")
	}
	return verdict(false, 0, "outline_0", "no outline structure")
}

func detectSlideTables(f *features.FileFeatures) Verdict {
	p := presentation(f)
	if p != nil && p.TableCount >= 1 {
		return verdict(true, 1, "tbl_1", "table present")
	}
	return verdict(false, 0, "tbl_0", "no tables")
}
