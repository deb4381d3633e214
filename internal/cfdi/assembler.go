package cfdi

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/models"
)

// Assemble composes every section extractor's output into one normalized
// record. The extractors are independent of each other, so invocation order
// does not affect the result. Assemble never fails: a tree that parsed is a
// tree that extracts.
func (e *Extractor) Assemble(source string, doc *etree.Document) *models.NormalizedRecord {
	root := doc.Root()

	record := &models.NormalizedRecord{
		Source:        source,
		ProcessedAt:   time.Now(),
		Version:       ResolveVersion(root),
		General:       e.ExtractGeneral(root),
		Issuer:        e.ExtractIssuer(root),
		Recipient:     e.ExtractRecipient(root),
		LineItems:     e.ExtractLineItems(root),
		Stamp:         e.ExtractStamp(root),
		DocumentTaxes: e.ExtractTaxes(root),
		Complements:   e.ExtractComplements(root),
	}

	e.logSummary(record)
	return record
}

// ProcessFile runs the whole pipeline for one document path.
func (e *Extractor) ProcessFile(path string) (*models.NormalizedRecord, error) {
	doc, err := e.Load(path)
	if err != nil {
		return nil, err
	}
	return e.Assemble(path, doc), nil
}

// ProcessBytes runs the pipeline over raw bytes, tagging the record with the
// given source identifier.
func (e *Extractor) ProcessBytes(source string, data []byte) (*models.NormalizedRecord, error) {
	doc, err := e.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return e.Assemble(source, doc), nil
}

// logSummary emits the operator-facing digest of one record. Side effect
// only, not part of the data contract.
func (e *Extractor) logSummary(rec *models.NormalizedRecord) {
	uuid := "No disponible"
	if rec.Stamp != nil && rec.Stamp.UUID != nil {
		uuid = *rec.Stamp.UUID
	}

	fields := []zap.Field{
		zap.String("source", rec.Source),
		zap.String("uuid", uuid),
		zap.String("type", rec.General.DocumentType),
		zap.String("serie_folio", rec.General.Serie+"-"+rec.General.Folio),
		zap.Float64("total", rec.General.Total),
		zap.String("currency", rec.General.Currency),
		zap.String("issuer", partyLabel(rec.Issuer)),
		zap.String("recipient", partyLabel(rec.Recipient)),
		zap.Int("line_items", len(rec.LineItems)),
	}
	if kinds := rec.Complements.Kinds(); len(kinds) > 0 {
		fields = append(fields, zap.String("complements", strings.Join(kinds, ",")))
	}

	e.logger.Info("CFDI processed", fields...)
}

func partyLabel(p models.Party) string {
	name := "Sin nombre"
	if p.Name != nil {
		name = *p.Name
	}
	rfc := ""
	if p.RFC != nil {
		rfc = *p.RFC
	}
	return name + " (" + rfc + ")"
}
