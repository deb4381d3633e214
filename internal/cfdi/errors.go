package cfdi

import "errors"

// Loader failure taxonomy. These are the only failures the engine can
// produce: a missing element or attribute downstream of a successful parse
// is absorbed into defaults, never raised.
var (
	// ErrNotFound means the source path does not resolve to a readable file.
	ErrNotFound = errors.New("source document not found")

	// ErrMalformedXML means the content is not well-formed XML.
	ErrMalformedXML = errors.New("malformed XML document")

	// ErrUnknownRead covers I/O or encoding failures distinct from
	// malformed content.
	ErrUnknownRead = errors.New("unknown read error")
)

// Failure kind identifiers, stable across reports and API payloads.
const (
	KindNotFound     = "not_found"
	KindMalformedXML = "malformed_xml"
	KindUnknownRead  = "unknown_read_error"
)

// Classify maps a loader error to its failure kind. Unwrapped errors from
// outside the taxonomy fall back to the unknown-read kind.
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedXML):
		return KindMalformedXML
	default:
		return KindUnknownRead
	}
}
