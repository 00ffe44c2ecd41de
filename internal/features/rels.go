package features

import (
	"path"
	"strings"

	"github.com/docuscore/docuscore/internal/xmlnav"
)

// relationship is one entry of a .rels part.
type relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// parseRels reads a relationship part into an id-keyed map. Parsing is
// best-effort: a malformed part yields an empty map.
func parseRels(content string) map[string]relationship {
	out := map[string]relationship{}
	doc := xmlnav.Parse(content)
	if doc == nil {
		return out
	}
	for _, el := range xmlnav.FindElements(doc.Root(), "", "Relationship") {
		rel := relationship{
			ID:         xmlnav.AttrDefault(el, "Id", ""),
			Type:       xmlnav.AttrDefault(el, "Type", ""),
			Target:     xmlnav.AttrDefault(el, "Target", ""),
			TargetMode: xmlnav.AttrDefault(el, "TargetMode", ""),
		}
		if rel.ID != "" {
			out[rel.ID] = rel
		}
	}
	return out
}

func (r relationship) external() bool {
	return strings.EqualFold(r.TargetMode, "External") ||
		strings.HasPrefix(r.Target, "http://") ||
		strings.HasPrefix(r.Target, "https://") ||
		strings.HasPrefix(r.Target, "mailto:")
}

// isType matches the trailing segment of a relationship type URI, e.g.
// "slideLayout" or "hyperlink".
func (r relationship) isType(kind string) bool {
	return strings.HasSuffix(r.Type, "/"+kind)
}

// layoutNameFromTarget turns "../slideLayouts/slideLayout2.xml" into
// "slideLayout2".
func layoutNameFromTarget(target string) string {
	base := path.Base(target)
	return strings.TrimSuffix(base, path.Ext(base))
}
