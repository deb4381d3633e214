package cfdi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Load reads and parses a CFDI file, returning the document tree or one of
// the typed failures in errors.go. The detected version is logged as a side
// effect; it is informational only.
func (e *Extractor) Load(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownRead, err)
	}
	return e.LoadBytes(data)
}

// LoadBytes parses raw document bytes. Callers streaming documents from
// somewhere other than the filesystem enter the pipeline here.
func (e *Extractor) LoadBytes(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: line %d: %s", ErrMalformedXML, syntaxErr.Line, syntaxErr.Msg)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownRead, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedXML)
	}

	e.logger.Info("CFDI document loaded",
		zap.String("version", ResolveVersion(root)),
		zap.String("root_tag", root.Tag))

	return doc, nil
}
