package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"ppt/presentation.xml":           "<p:presentation/>",
		"ppt/slides/slide1.xml":          "<p:sld/>",
		"ppt/_rels/presentation.xml.rels": "<Relationships/>",
		"meta.json":                      "{}",
	})
	res, err := Extract(data, FormatZip, DefaultOptions())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(res.Parts) != 4 {
		t.Fatalf("parts = %d, want 4", len(res.Parts))
	}
	if res.Parts["ppt/slides/slide1.xml"] != "<p:sld/>" {
		t.Errorf("slide1 content = %q", res.Parts["ppt/slides/slide1.xml"])
	}
	if res.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestExtractRejectsUnsafeEntries(t *testing.T) {
	cases := []string{
		"../../etc/passwd",
		"../../etc/passwd.xml",
		"/abs/path.xml",
		"ppt/../../../x.rels",
		"ppt\\..\\..\\x.xml",
		"binary/payload.exe",
		"media/image1.png",
	}
	for _, name := range cases {
		data := buildZip(t, map[string]string{
			name:      "nope",
			"ok.xml": "<a/>",
		})
		res, err := Extract(data, FormatZip, DefaultOptions())
		if err != nil {
			t.Fatalf("%s: extract: %v", name, err)
		}
		if _, ok := res.Parts[name]; ok {
			t.Errorf("%s: unsafe entry was extracted", name)
		}
		if _, ok := res.Parts["ok.xml"]; !ok {
			t.Errorf("%s: safe sibling was dropped", name)
		}
		// The skipped entry is still visible by name for feature heuristics.
		if _, ok := res.Entry(name); !ok {
			t.Errorf("%s: entry missing from listing", name)
		}
	}
}

func TestExtractDepthLimit(t *testing.T) {
	deep := strings.Repeat("d/", 9) + "leaf.xml"
	data := buildZip(t, map[string]string{deep: "<a/>", "top.xml": "<b/>"})
	res, err := Extract(data, FormatZip, DefaultOptions())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, ok := res.Parts[deep]; ok {
		t.Error("over-deep entry was extracted")
	}
	if _, ok := res.Parts["top.xml"]; !ok {
		t.Error("shallow entry was dropped")
	}
}

func TestExtractFileCountLimitIsNotAnError(t *testing.T) {
	entries := map[string]string{}
	for _, n := range []string{"a.xml", "b.xml", "c.xml", "d.xml", "e.xml"} {
		entries[n] = "<x/>"
	}
	data := buildZip(t, entries)
	opts := DefaultOptions()
	opts.MaxFiles = 2
	res, err := Extract(data, FormatZip, opts)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(res.Parts) != 2 {
		t.Errorf("parts = %d, want 2", len(res.Parts))
	}
	if !res.Truncated {
		t.Error("expected Truncated")
	}
}

func TestExtractTotalSizeLimit(t *testing.T) {
	big := strings.Repeat("x", 4000)
	data := buildZip(t, map[string]string{"a.xml": big, "b.xml": big, "c.xml": big})
	opts := DefaultOptions()
	opts.MaxTotalBytes = 5000
	res, err := Extract(data, FormatZip, opts)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !res.Truncated {
		t.Error("expected Truncated")
	}
	var total int
	for _, p := range res.Parts {
		total += len(p)
	}
	if total > 5000 {
		t.Errorf("extracted %d bytes, limit 5000", total)
	}
}

func TestExtractFailures(t *testing.T) {
	if _, err := Extract([]byte{'P'}, FormatZip, DefaultOptions()); !errors.Is(err, ErrTooSmall) {
		t.Errorf("tiny buffer: err = %v, want ErrTooSmall", err)
	}
	if _, err := Extract([]byte("this is not a container at all"), FormatZip, DefaultOptions()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("bad magic: err = %v, want ErrBadSignature", err)
	}
	// Valid magic, garbage body.
	corrupt := append([]byte{'P', 'K', 0x03, 0x04}, bytes.Repeat([]byte{0xff}, 64)...)
	if _, err := Extract(corrupt, FormatZip, DefaultOptions()); !errors.Is(err, ErrCorrupt) {
		t.Errorf("corrupt zip: err = %v, want ErrCorrupt", err)
	}
	if _, err := Extract(buildZip(t, map[string]string{"a.xml": "<a/>"}), FormatRar, DefaultOptions()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("zip declared as rar: err = %v, want ErrBadSignature", err)
	}
}

func TestSniff(t *testing.T) {
	if f, ok := Sniff(buildZip(t, map[string]string{"a.xml": "<a/>"})); !ok || f != FormatZip {
		t.Errorf("sniff zip = %v %v", f, ok)
	}
	if f, ok := Sniff([]byte("Rar!\x1a\x07\x00rest")); !ok || f != FormatRar {
		t.Errorf("sniff rar4 = %v %v", f, ok)
	}
	if _, ok := Sniff([]byte("plain text")); ok {
		t.Error("sniff accepted plain text")
	}
}
