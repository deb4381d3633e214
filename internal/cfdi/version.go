package cfdi

import (
	"strings"

	"github.com/beevik/etree"
)

// VersionUnknown is reported when neither the Version attribute nor the
// namespace heuristic identifies the schema generation.
const VersionUnknown = "Unknown"

// ResolveVersion determines the document's schema generation. The explicit
// Version attribute wins; otherwise the root namespace is inspected for a
// generation marker. The result is informational (logging, history rows) and
// never gates extraction: namespace fallback in the lookup table is what
// actually absorbs version variance.
func ResolveVersion(root *etree.Element) string {
	if v := root.SelectAttrValue("Version", ""); v != "" {
		return v
	}
	if v := root.SelectAttrValue("version", ""); v != "" {
		return v
	}

	switch uri := root.NamespaceURI(); {
	case strings.Contains(uri, "cfd/4"):
		return "4.0"
	case strings.Contains(uri, "cfd/3"):
		return "3.3"
	default:
		return VersionUnknown
	}
}
