// Package features turns an extracted part map into a canonical, fully
// populated description of a document. Every optional field is a concrete
// value or an explicit empty default, so detectors never need nil checks
// beyond "is this list empty".
package features

// Kind identifies the document family a feature model describes.
type Kind string

const (
	KindPresentation Kind = "pptx"
	KindDocument     Kind = "docx"
)

// FileFeatures wraps exactly one populated variant. Detectors receive this
// and pick the variant they understand; a nil variant reads as "feature
// absent" and yields the lowest tier.
type FileFeatures struct {
	Kind         Kind                  `json:"kind"`
	Presentation *PresentationFeatures `json:"presentation,omitempty"`
	Document     *DocumentFeatures     `json:"document,omitempty"`
}

// Metadata carries document properties from docProps/core.xml.
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Theme describes the drawing theme part.
type Theme struct {
	Name           string `json:"name"`
	IsCustom       bool   `json:"is_custom"`
	HasColorScheme bool   `json:"has_color_scheme"`
	HasFontScheme  bool   `json:"has_font_scheme"`
}

// Master describes the slide master. Modification is inferred from the
// presence of parseable master XML, not from a diff against a known
// default master.
type Master struct {
	Modified    bool `json:"modified"`
	LayoutCount int  `json:"layout_count"`
}

// HeaderFooter covers slide footers and document headers/footers.
type HeaderFooter struct {
	HasHeader      bool   `json:"has_header"`
	HasFooter      bool   `json:"has_footer"`
	HasPageNumber  bool   `json:"has_page_number"`
	HasDate        bool   `json:"has_date"`
	FooterText     string `json:"footer_text"`
}

type Hyperlink struct {
	SlideIndex int    `json:"slide_index"` // 0 for word documents
	Target     string `json:"target"`
	External   bool   `json:"external"`
}

type Transition struct {
	SlideIndex int    `json:"slide_index"`
	Type       string `json:"type"`
}

type Animation struct {
	SlideIndex int    `json:"slide_index"`
	Type       string `json:"type"`
	Effect     string `json:"effect"`
}

// Object is an embedded object: image, chart, table, media or ole.
type Object struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// Outline is the inferred logical outline of a presentation. Nesting is
// read from leading-whitespace conventions in slide titles.
type Outline struct {
	Present      bool `json:"present"`
	TitledSlides int  `json:"titled_slides"`
	MaxDepth     int  `json:"max_depth"`
}

// Export records exported artifacts shipped alongside the document in the
// same container.
type Export struct {
	HasPDFExport bool `json:"has_pdf_export"`
	PDFPageCount int  `json:"pdf_page_count"`
}

type Slide struct {
	Index      int    `json:"index"` // 1-based
	Title      string `json:"title"`
	TitleDepth int    `json:"title_depth"` // 1 = top level
	LayoutName string `json:"layout_name"`
	TextLength int    `json:"text_length"`
	HasNotes   bool   `json:"has_notes"`
}

type PresentationFeatures struct {
	Filename     string       `json:"filename"`
	FileSize     int64        `json:"file_size"`
	Metadata     Metadata     `json:"metadata"`
	SlideCount   int          `json:"slide_count"`
	Slides       []Slide      `json:"slides"`
	Theme        Theme        `json:"theme"`
	Master       Master       `json:"master"`
	HeaderFooter HeaderFooter `json:"header_footer"`
	Hyperlinks   []Hyperlink  `json:"hyperlinks"`
	Transitions  []Transition `json:"transitions"`
	Animations   []Animation  `json:"animations"`
	Objects      []Object     `json:"objects"`
	Outline      Outline      `json:"outline"`
	Export       Export       `json:"export"`
	TableCount   int          `json:"table_count"`
	Equations    int          `json:"equations"`

	// Degraded marks a model synthesized from filename and byte size after
	// the main part failed to parse. Scores derived from a degraded model
	// are guesses, not measurements.
	Degraded bool `json:"degraded"`
}

type Paragraph struct {
	Text   string `json:"text"`
	Style  string `json:"style"`
	Length int    `json:"length"`
}

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type DocumentFeatures struct {
	Filename       string       `json:"filename"`
	FileSize       int64        `json:"file_size"`
	Metadata       Metadata     `json:"metadata"`
	ParagraphCount int          `json:"paragraph_count"`
	Paragraphs     []Paragraph  `json:"paragraphs"`
	Headings       []Heading    `json:"headings"`
	StylesUsed     []string     `json:"styles_used"`
	HeaderFooter   HeaderFooter `json:"header_footer"`
	Hyperlinks     []Hyperlink  `json:"hyperlinks"`
	TableCount     int          `json:"table_count"`
	ImageCount     int          `json:"image_count"`
	Equations      int          `json:"equations"`
	HasTOC         bool         `json:"has_toc"`
	PageEstimate   int          `json:"page_estimate"`
	Export         Export       `json:"export"`

	Degraded bool `json:"degraded"`
}

func newPresentationFeatures(filename string, size int64) *PresentationFeatures {
	return &PresentationFeatures{
		Filename:    filename,
		FileSize:    size,
		Slides:      []Slide{},
		Hyperlinks:  []Hyperlink{},
		Transitions: []Transition{},
		Animations:  []Animation{},
		Objects:     []Object{},
	}
}

func newDocumentFeatures(filename string, size int64) *DocumentFeatures {
	return &DocumentFeatures{
		Filename:   filename,
		FileSize:   size,
		Paragraphs: []Paragraph{},
		Headings:   []Heading{},
		StylesUsed: []string{},
		Hyperlinks: []Hyperlink{},
	}
}
