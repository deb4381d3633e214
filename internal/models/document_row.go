package models

import "time"

// Document processing statuses recorded in the history store.
const (
	DocumentStatusProcessed = "processed"
	DocumentStatusFailed    = "failed"
)

// DocumentRow is the flattened per-document outcome persisted by the batch
// shell. Failures carry a kind instead of extracted fields.
type DocumentRow struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	SourcePath   string    `json:"source_path"`
	Serie        string    `json:"serie"`
	Folio        string    `json:"folio"`
	DocumentType string    `json:"document_type"`
	Total        float64   `json:"total"`
	Currency     string    `json:"currency"`
	IssuerRFC    string    `json:"issuer_rfc"`
	RecipientRFC string    `json:"recipient_rfc"`
	Status       string    `json:"status"`
	FailureKind  string    `json:"failure_kind,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDocumentRow flattens a normalized record into a history row.
func NewDocumentRow(rec *NormalizedRecord) *DocumentRow {
	row := &DocumentRow{
		SourcePath:   rec.Source,
		Serie:        rec.General.Serie,
		Folio:        rec.General.Folio,
		DocumentType: rec.General.DocumentType,
		Total:        rec.General.Total,
		Currency:     rec.General.Currency,
		Status:       DocumentStatusProcessed,
		ProcessedAt:  rec.ProcessedAt,
	}
	if rec.Stamp != nil && rec.Stamp.UUID != nil {
		row.UUID = *rec.Stamp.UUID
	}
	if rec.Issuer.RFC != nil {
		row.IssuerRFC = *rec.Issuer.RFC
	}
	if rec.Recipient.RFC != nil {
		row.RecipientRFC = *rec.Recipient.RFC
	}
	return row
}

// NewFailedDocumentRow records a per-document loader failure.
func NewFailedDocumentRow(sourcePath, failureKind string) *DocumentRow {
	return &DocumentRow{
		SourcePath:  sourcePath,
		Status:      DocumentStatusFailed,
		FailureKind: failureKind,
		ProcessedAt: time.Now(),
	}
}
