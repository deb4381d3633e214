package cfdi

import "github.com/beevik/etree"

// Well-known namespace prefixes used across CFDI generations. The prefix is
// an engine-side alias into the NamespaceTable, not whatever prefix the
// document happens to declare; lookups always compare resolved URIs.
const (
	NSCFDI    = "cfdi"   // CFDI 4.0
	NSCFDI33  = "cfdi33" // CFDI 3.3
	NSTFD     = "tfd"    // Timbre Fiscal Digital
	NSPagos20 = "pago20" // Pagos complement 2.0
	NSPagos10 = "pago10" // Pagos complement 1.0
	NSNomina  = "nomina12"
	NSCarta   = "cartaporte31"
)

// NamespaceTable maps engine prefixes to namespace URIs. It is handed to the
// extractor at construction and treated as immutable; adding support for a
// new complement generation means extending the table, not touching call
// sites.
type NamespaceTable map[string]string

// DefaultNamespaces returns the namespace table covering both CFDI schema
// generations and the complements this engine understands.
func DefaultNamespaces() NamespaceTable {
	return NamespaceTable{
		NSCFDI:    "http://www.sat.gob.mx/cfd/4",
		NSCFDI33:  "http://www.sat.gob.mx/cfd/3",
		NSTFD:     "http://www.sat.gob.mx/TimbreFiscalDigital",
		NSPagos20: "http://www.sat.gob.mx/Pagos20",
		NSPagos10: "http://www.sat.gob.mx/Pagos",
		NSNomina:  "http://www.sat.gob.mx/nomina12",
		NSCarta:   "http://www.sat.gob.mx/CartaPorte31",
	}
}

// Merge returns a copy of the table with the overrides applied, so a config
// file can register future complement namespaces without code changes.
func (t NamespaceTable) Merge(overrides map[string]string) NamespaceTable {
	merged := make(NamespaceTable, len(t)+len(overrides))
	for prefix, uri := range t {
		merged[prefix] = uri
	}
	for prefix, uri := range overrides {
		merged[prefix] = uri
	}
	return merged
}

// matches reports whether el resolves to the URI registered for prefix and
// carries the given local name.
func (t NamespaceTable) matches(el *etree.Element, local, prefix string) bool {
	uri, ok := t[prefix]
	if !ok {
		return false
	}
	return el.Tag == local && el.NamespaceURI() == uri
}

// FindFirst walks a relative child path (one local name per level, all levels
// under the same namespace) trying each candidate prefix in order. The first
// prefix yielding a match wins; no match yields nil, never an error.
func (t NamespaceTable) FindFirst(root *etree.Element, path []string, prefixes ...string) *etree.Element {
	for _, prefix := range prefixes {
		if found := t.findPath(root, path, prefix); len(found) > 0 {
			return found[0]
		}
	}
	return nil
}

// FindAll is FindFirst for repeating elements: it returns every match of the
// path under the first candidate prefix that yields a non-empty result.
func (t NamespaceTable) FindAll(root *etree.Element, path []string, prefixes ...string) []*etree.Element {
	for _, prefix := range prefixes {
		if found := t.findPath(root, path, prefix); len(found) > 0 {
			return found
		}
	}
	return nil
}

// FindFirstAnywhere searches all descendants of root for the first element
// with the given local name, trying each candidate prefix in order.
func (t NamespaceTable) FindFirstAnywhere(root *etree.Element, local string, prefixes ...string) *etree.Element {
	for _, prefix := range prefixes {
		if found := t.findAnywhere(root, local, prefix); len(found) > 0 {
			return found[0]
		}
	}
	return nil
}

// FindAllAnywhere collects every descendant with the given local name under
// the first candidate prefix that yields a non-empty result. Document order
// is preserved.
func (t NamespaceTable) FindAllAnywhere(root *etree.Element, local string, prefixes ...string) []*etree.Element {
	for _, prefix := range prefixes {
		if found := t.findAnywhere(root, local, prefix); len(found) > 0 {
			return found
		}
	}
	return nil
}

func (t NamespaceTable) findPath(root *etree.Element, path []string, prefix string) []*etree.Element {
	current := []*etree.Element{root}
	for _, local := range path {
		var next []*etree.Element
		for _, el := range current {
			for _, child := range el.ChildElements() {
				if t.matches(child, local, prefix) {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

func (t NamespaceTable) findAnywhere(root *etree.Element, local, prefix string) []*etree.Element {
	var found []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if t.matches(child, local, prefix) {
				found = append(found, child)
			}
			walk(child)
		}
	}
	walk(root)
	return found
}
