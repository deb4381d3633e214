package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/models"
)

func strptr(s string) *string { return &s }

func sampleRecord() *models.NormalizedRecord {
	return &models.NormalizedRecord{
		Source:      "factura_a1.xml",
		ProcessedAt: time.Now(),
		Version:     "4.0",
		General: models.GeneralData{
			Serie:           "A",
			Folio:           "1",
			IssueDate:       strptr("2025-12-30T12:00:00"),
			SubTotal:        100,
			Total:           116,
			Currency:        "MXN",
			DocumentType:    "Ingreso (Factura)",
			PaymentMethod:   "PUE",
			PlaceOfIssuance: "06000",
		},
		Issuer: models.Party{
			RFC:  strptr("DEMO010101001"),
			Name: strptr("Demo SA de CV"),
		},
		Recipient: models.Party{
			RFC:  strptr("XAXX010101000"),
			Name: strptr("Publico General"),
		},
		LineItems: []models.LineItem{
			{
				ProductCode: strptr("84111506"),
				Description: strptr("Servicio de consultoria"),
				Quantity:    1,
				UnitValue:   100,
				Amount:      100,
			},
		},
		Stamp: &models.FiscalStamp{
			UUID: strptr("AAAABBBB-CCCC-DDDD-EEEE-FFFF00001111"),
		},
		DocumentTaxes: models.TaxInfo{
			Transfers: []models.TaxEntry{
				{Base: 100, Tax: strptr("002"), RateOrFee: 0.16, Amount: 16},
			},
			Withholdings: []models.TaxEntry{},
		},
	}
}

func paymentRecord() *models.NormalizedRecord {
	rec := &models.NormalizedRecord{
		Source:        "pago_p1.xml",
		ProcessedAt:   time.Now(),
		Version:       "4.0",
		General:       models.GeneralData{Serie: "P", Folio: "9", Currency: "XXX", DocumentType: "Pago"},
		DocumentTaxes: models.TaxInfo{Transfers: []models.TaxEntry{}, Withholdings: []models.TaxEntry{}},
		Complements: models.Complements{
			Payments: &models.PaymentComplement{
				Payments: []models.Payment{
					{
						Date:   strptr("2026-02-01T00:00:00"),
						Amount: 580,
						RelatedDocuments: []models.RelatedDocument{
							{
								DocumentID:       strptr("AAAABBBB-CCCC-DDDD-EEEE-FFFF00001111"),
								Serie:            strptr("A"),
								Folio:            strptr("1"),
								Currency:         strptr("MXN"),
								PriorBalance:     1160,
								AmountPaid:       580,
								RemainingBalance: 580,
								Transfers: []models.TaxEntry{
									{Base: 500, RateOrFee: 0.16, Amount: 80},
								},
							},
						},
					},
				},
			},
		},
	}
	return rec
}

func TestExport_EmptyInput(t *testing.T) {
	w := NewExcelWriter(t.TempDir(), "reporte.xlsx", zap.NewNop())

	path, err := w.Export(nil)

	assert.Empty(t, path)
	assert.Error(t, err)
}

func TestExport_GeneralAndLineItems(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, "reporte_cfdi.xlsx", zap.NewNop())

	path, err := w.Export([]*models.NormalizedRecord{sampleRecord()})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reporte_cfdi.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// No payment complements, so the related-documents sheet is absent.
	assert.Equal(t, []string{SheetGeneral, SheetLineItems}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "UUID", cell(SheetGeneral, "A1"))
	assert.Equal(t, "AAAABBBB-CCCC-DDDD-EEEE-FFFF00001111", cell(SheetGeneral, "A2"))
	assert.Equal(t, "Ingreso (Factura)", cell(SheetGeneral, "C2"))
	assert.Equal(t, "A", cell(SheetGeneral, "E2"))
	assert.Equal(t, "100", cell(SheetGeneral, "G2"))
	assert.Equal(t, "0.16", cell(SheetGeneral, "H2"))
	assert.Equal(t, "16", cell(SheetGeneral, "I2"))
	assert.Equal(t, "DEMO010101001", cell(SheetGeneral, "M2"))

	assert.Equal(t, "UUID_CFDI", cell(SheetLineItems, "A1"))
	assert.Equal(t, "84111506", cell(SheetLineItems, "B2"))
	assert.Equal(t, "Servicio de consultoria", cell(SheetLineItems, "C2"))
	assert.Equal(t, "100", cell(SheetLineItems, "G2"))
}

func TestExport_RateFallbacks(t *testing.T) {
	rec := sampleRecord()
	rec.Stamp = nil
	rec.DocumentTaxes.Transfers = []models.TaxEntry{}

	w := NewExcelWriter(t.TempDir(), "reporte.xlsx", zap.NewNop())
	path, err := w.Export([]*models.NormalizedRecord{rec})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	uuid, err := f.GetCellValue(SheetGeneral, "A2")
	require.NoError(t, err)
	assert.Equal(t, "SIN_UUID", uuid)

	rate, err := f.GetCellValue(SheetGeneral, "H2")
	require.NoError(t, err)
	assert.Equal(t, "SIN_TASA", rate)

	amount, err := f.GetCellValue(SheetGeneral, "I2")
	require.NoError(t, err)
	assert.Equal(t, "SIN_IMPORTE", amount)
}

func TestExport_RelatedDocumentsSheet(t *testing.T) {
	w := NewExcelWriter(t.TempDir(), "reporte.xlsx", zap.NewNop())

	path, err := w.Export([]*models.NormalizedRecord{sampleRecord(), paymentRecord()})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), SheetRelated)

	docID, err := f.GetCellValue(SheetRelated, "B2")
	require.NoError(t, err)
	assert.Equal(t, "AAAABBBB-CCCC-DDDD-EEEE-FFFF00001111", docID)

	paid, err := f.GetCellValue(SheetRelated, "G2")
	require.NoError(t, err)
	assert.Equal(t, "580", paid)

	amount, err := f.GetCellValue(SheetRelated, "K2")
	require.NoError(t, err)
	assert.Equal(t, "80", amount)
}
