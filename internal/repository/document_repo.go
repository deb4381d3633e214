package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/models"
)

// DocumentRepository records per-document processing outcomes. It lives on
// the batch-shell side of the engine boundary: the extraction engine itself
// never touches storage.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a processing-outcome row
func (r *DocumentRepository) Create(row *models.DocumentRow) error {
	query := `
		INSERT INTO documents (
			uuid, source_path, serie, folio, document_type, total, currency,
			issuer_rfc, recipient_rfc, status, failure_kind, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		row.UUID,
		row.SourcePath,
		row.Serie,
		row.Folio,
		row.DocumentType,
		row.Total,
		row.Currency,
		row.IssuerRFC,
		row.RecipientRFC,
		row.Status,
		row.FailureKind,
		row.ProcessedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document row", zap.Error(err))
		return fmt.Errorf("failed to create document row: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	row.ID = id
	return nil
}

// GetByUUID returns the most recent row for a fiscal UUID, or nil when the
// UUID has never been processed
func (r *DocumentRepository) GetByUUID(uuid string) (*models.DocumentRow, error) {
	query := `
		SELECT id, uuid, source_path, serie, folio, document_type, total,
		       currency, issuer_rfc, recipient_rfc, status, failure_kind,
		       processed_at, created_at
		FROM documents
		WHERE uuid = ?
		ORDER BY id DESC
		LIMIT 1
	`

	row := &models.DocumentRow{}
	err := r.db.QueryRow(query, uuid).Scan(
		&row.ID,
		&row.UUID,
		&row.SourcePath,
		&row.Serie,
		&row.Folio,
		&row.DocumentType,
		&row.Total,
		&row.Currency,
		&row.IssuerRFC,
		&row.RecipientRFC,
		&row.Status,
		&row.FailureKind,
		&row.ProcessedAt,
		&row.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document by uuid", zap.Error(err))
		return nil, fmt.Errorf("failed to get document by uuid: %w", err)
	}

	return row, nil
}

// CountByStatus returns the number of rows recorded with a given status
// since a point in time
func (r *DocumentRepository) CountByStatus(status string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE status = ? AND processed_at >= ?`

	var count int
	if err := r.db.QueryRow(query, status, since).Scan(&count); err != nil {
		r.logger.Error("Failed to count documents", zap.Error(err))
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// ListRecent returns the latest rows, newest first
func (r *DocumentRepository) ListRecent(limit int) ([]*models.DocumentRow, error) {
	query := `
		SELECT id, uuid, source_path, serie, folio, document_type, total,
		       currency, issuer_rfc, recipient_rfc, status, failure_kind,
		       processed_at, created_at
		FROM documents
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var result []*models.DocumentRow
	for rows.Next() {
		row := &models.DocumentRow{}
		if err := rows.Scan(
			&row.ID,
			&row.UUID,
			&row.SourcePath,
			&row.Serie,
			&row.Folio,
			&row.DocumentType,
			&row.Total,
			&row.Currency,
			&row.IssuerRFC,
			&row.RecipientRFC,
			&row.Status,
			&row.FailureKind,
			&row.ProcessedAt,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
