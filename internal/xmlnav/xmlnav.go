// Package xmlnav provides namespace-tolerant traversal helpers over etree
// documents. OpenXML parts are inconsistent about prefixes (some producers
// strip them), so lookups match both the prefixed and bare tag name.
package xmlnav

import (
	"strings"

	"github.com/beevik/etree"
)

// Parse returns the parsed document, or nil when the input is not
// well-formed XML. Callers treat a nil document as an empty feature,
// never as a fatal condition.
func Parse(s string) *etree.Document {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil
	}
	if doc.Root() == nil {
		return nil
	}
	return doc
}

func matches(e *etree.Element, ns, tag string) bool {
	if e.Tag != tag {
		return false
	}
	return ns == "" || e.Space == ns || e.Space == ""
}

// FindElements does a depth-first search under el (inclusive) for every
// element with the given tag, accepting both ns:tag and a bare tag.
func FindElements(el *etree.Element, ns, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if matches(e, ns, tag) {
			out = append(out, e)
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(el)
	return out
}

// FindElement returns the first match in document order, or nil.
func FindElement(el *etree.Element, ns, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	if matches(el, ns, tag) {
		return el
	}
	for _, c := range el.ChildElements() {
		if found := FindElement(c, ns, tag); found != nil {
			return found
		}
	}
	return nil
}

// RawText concatenates the character data of el and every descendant,
// preserving leading and trailing whitespace.
func RawText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		b.WriteString(e.Text())
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(el)
	return b.String()
}

// ExtractText is RawText with surrounding whitespace trimmed. Used for
// titles, footers and paragraph text.
func ExtractText(el *etree.Element) string {
	return strings.TrimSpace(RawText(el))
}

// attrPrefixes are tried, in order, when an attribute key has no exact
// match. OpenXML attributes commonly carry the relationship or main
// namespace prefix.
var attrPrefixes = []string{"r", "w", "a", "p", "xml"}

// Attr looks up an attribute by exact key, then by common prefixed
// variants, then by the bare local name of a prefixed key.
func Attr(el *etree.Element, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	if a := el.SelectAttr(key); a != nil {
		return a.Value, true
	}
	if !strings.Contains(key, ":") {
		for _, p := range attrPrefixes {
			if a := el.SelectAttr(p + ":" + key); a != nil {
				return a.Value, true
			}
		}
	} else {
		if i := strings.IndexByte(key, ':'); i >= 0 {
			if a := el.SelectAttr(key[i+1:]); a != nil {
				return a.Value, true
			}
		}
	}
	return "", false
}

// AttrDefault is Attr with a fallback value.
func AttrDefault(el *etree.Element, key, def string) string {
	if v, ok := Attr(el, key); ok {
		return v
	}
	return def
}
