package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/models"
)

// Sheet names of the consolidated report.
const (
	SheetGeneral   = "CFDI_General"
	SheetLineItems = "Conceptos"
	SheetRelated   = "Documentos Relacionados"
)

// Cell fallbacks kept from the legacy report so downstream spreadsheets
// keep matching on them.
const (
	noUUID   = "SIN_UUID"
	noRate   = "SIN_TASA"
	noAmount = "SIN_IMPORTE"
)

// ExcelWriter renders a batch of normalized records into one workbook:
// a general sheet (one row per document), a line-item sheet (one row per
// concepto), and, only when any exist, a related-documents sheet for
// payment complements. The engine guarantees each record is
// self-contained, so flattening never re-reads a source document.
type ExcelWriter struct {
	outputDir  string
	reportName string
	logger     *zap.Logger
}

// NewExcelWriter creates a new report writer
func NewExcelWriter(outputDir, reportName string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{
		outputDir:  outputDir,
		reportName: reportName,
		logger:     logger,
	}
}

// Export writes the workbook and returns its path.
func (w *ExcelWriter) Export(records []*models.NormalizedRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records to export")
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetGeneral); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetLineItems); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := w.writeGeneral(f, records); err != nil {
		return "", err
	}
	if err := w.writeLineItems(f, records); err != nil {
		return "", err
	}

	relatedRows := w.relatedRows(records)
	if len(relatedRows) > 0 {
		if _, err := f.NewSheet(SheetRelated); err != nil {
			return "", fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := writeRows(f, SheetRelated, relatedHeaders, relatedRows); err != nil {
			return "", err
		}
	}

	outputPath := filepath.Join(w.outputDir, w.reportName)
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	w.logger.Info("Excel report written",
		zap.String("path", outputPath),
		zap.Int("records", len(records)),
		zap.Int("related_documents", len(relatedRows)))

	return outputPath, nil
}

var generalHeaders = []interface{}{
	"UUID", "Fecha", "Tipo Comprobante", "Metodo de Pago", "Serie", "Folio",
	"Subtotal", "TasaOCuota", "ImporteTraslado", "Total", "Moneda",
	"Descripcion", "Emisor RFC", "Emisor Nombre", "Receptor RFC",
	"Receptor Nombre", "Uso CFDI", "RegimenFiscalReceptor",
	"LugarExpedicion", "DomicilioFiscalReceptor",
}

func (w *ExcelWriter) writeGeneral(f *excelize.File, records []*models.NormalizedRecord) error {
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		// First document-level transfer feeds the legacy rate columns.
		var rate, amount interface{} = noRate, noAmount
		if len(rec.DocumentTaxes.Transfers) > 0 {
			rate = rec.DocumentTaxes.Transfers[0].RateOrFee
			amount = rec.DocumentTaxes.Transfers[0].Amount
		}

		var description *string
		if len(rec.LineItems) > 0 {
			description = rec.LineItems[0].Description
		}

		rows = append(rows, []interface{}{
			recordUUID(rec),
			strVal(rec.General.IssueDate),
			rec.General.DocumentType,
			rec.General.PaymentMethod,
			rec.General.Serie,
			rec.General.Folio,
			rec.General.SubTotal,
			rate,
			amount,
			rec.General.Total,
			rec.General.Currency,
			strVal(description),
			strVal(rec.Issuer.RFC),
			strVal(rec.Issuer.Name),
			strVal(rec.Recipient.RFC),
			strVal(rec.Recipient.Name),
			strVal(rec.Recipient.UsoCFDI),
			strVal(rec.Recipient.TaxRegime),
			rec.General.PlaceOfIssuance,
			strVal(rec.Recipient.FiscalDomicile),
		})
	}
	return writeRows(f, SheetGeneral, generalHeaders, rows)
}

var lineItemHeaders = []interface{}{
	"UUID_CFDI", "ClaveProdServ", "Descripcion", "Cantidad", "ClaveUnidad",
	"ValorUnitario", "Importe", "Descuento",
}

func (w *ExcelWriter) writeLineItems(f *excelize.File, records []*models.NormalizedRecord) error {
	var rows [][]interface{}
	for _, rec := range records {
		uuid := recordUUID(rec)
		for _, item := range rec.LineItems {
			rows = append(rows, []interface{}{
				uuid,
				strVal(item.ProductCode),
				strVal(item.Description),
				item.Quantity,
				strVal(item.UnitCode),
				item.UnitValue,
				item.Amount,
				item.Discount,
			})
		}
	}
	return writeRows(f, SheetLineItems, lineItemHeaders, rows)
}

var relatedHeaders = []interface{}{
	"UUID_CFDI", "IdDocumento", "Serie", "Folio", "MonedaDR",
	"ImpSaldoAnt", "ImpPagado", "ImpSaldoInsoluto", "BaseDR",
	"TasaOCuotaDR", "ImporteDR",
}

func (w *ExcelWriter) relatedRows(records []*models.NormalizedRecord) [][]interface{} {
	var rows [][]interface{}
	for _, rec := range records {
		if rec.Complements.Payments == nil {
			continue
		}
		uuid := recordUUID(rec)
		for _, payment := range rec.Complements.Payments.Payments {
			for _, doc := range payment.RelatedDocuments {
				var base, rate, amount interface{} = "", noRate, noAmount
				if len(doc.Transfers) > 0 {
					base = doc.Transfers[0].Base
					rate = doc.Transfers[0].RateOrFee
					amount = doc.Transfers[0].Amount
				}
				rows = append(rows, []interface{}{
					uuid,
					strVal(doc.DocumentID),
					strVal(doc.Serie),
					strVal(doc.Folio),
					strVal(doc.Currency),
					doc.PriorBalance,
					doc.AmountPaid,
					doc.RemainingBalance,
					base,
					rate,
					amount,
				})
			}
		}
	}
	return rows
}

// writeRows writes a header row followed by data rows.
func writeRows(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers on %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row on %s: %w", sheet, err)
		}
	}
	return nil
}

func recordUUID(rec *models.NormalizedRecord) string {
	if rec.Stamp != nil && rec.Stamp.UUID != nil {
		return *rec.Stamp.UUID
	}
	return noUUID
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
