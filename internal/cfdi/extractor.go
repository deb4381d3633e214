package cfdi

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/models"
)

// Attribute defaults applied when an attribute is missing from a present
// element. Kept in one place so the sentinel values are auditable.
const (
	DefaultSerie           = "Sin Serie"
	DefaultFolio           = "Sin Folio"
	DefaultCurrency        = "MXN"
	DefaultName            = "Sin Nombre"
	DefaultPlaceOfIssuance = "SIN_LUGAR"

	// DefaultPaymentMethod is the fallback when no default is configured.
	// The two historical extractor variants disagreed on this value
	// ("Pago parcial" vs "No especificado"), so it is configurable.
	DefaultPaymentMethod = "No especificado"
)

// documentTypeLabels translates TipoDeComprobante codes into report labels.
var documentTypeLabels = map[string]string{
	"I": "Ingreso (Factura)",
	"E": "Egreso (Nota de Crédito)",
	"P": "Pago",
	"N": "Nómina",
	"T": "Traslado",
}

// Extractor turns parsed CFDI trees into normalized records. It is stateless
// between documents and safe to share across goroutines as long as each
// invocation works on its own tree.
type Extractor struct {
	namespaces           NamespaceTable
	defaultPaymentMethod string
	logger               *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithNamespaces replaces the default namespace table.
func WithNamespaces(table NamespaceTable) Option {
	return func(e *Extractor) {
		e.namespaces = table
	}
}

// WithDefaultPaymentMethod overrides the MetodoPago fallback value.
func WithDefaultPaymentMethod(method string) Option {
	return func(e *Extractor) {
		if method != "" {
			e.defaultPaymentMethod = method
		}
	}
}

// NewExtractor creates a new CFDI extractor.
func NewExtractor(logger *zap.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		namespaces:           DefaultNamespaces(),
		defaultPaymentMethod: DefaultPaymentMethod,
		logger:               logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Namespaces returns the table the extractor was built with.
func (e *Extractor) Namespaces() NamespaceTable {
	return e.namespaces
}

// ExtractGeneral reads the unprefixed root attributes, applying the defaults
// table. It cannot fail: absent numeric attributes become 0.
func (e *Extractor) ExtractGeneral(root *etree.Element) models.GeneralData {
	return models.GeneralData{
		Serie:           root.SelectAttrValue("Serie", DefaultSerie),
		Folio:           root.SelectAttrValue("Folio", DefaultFolio),
		IssueDate:       attrOrNil(root, "Fecha"),
		SubTotal:        attrFloat(root, "SubTotal"),
		Total:           attrFloat(root, "Total"),
		Currency:        root.SelectAttrValue("Moneda", DefaultCurrency),
		DocumentType:    TranslateDocumentType(root.SelectAttrValue("TipoDeComprobante", "")),
		PaymentMethod:   root.SelectAttrValue("MetodoPago", e.defaultPaymentMethod),
		PlaceOfIssuance: root.SelectAttrValue("LugarExpedicion", DefaultPlaceOfIssuance),
	}
}

// TranslateDocumentType maps a TipoDeComprobante code to its label. Unknown
// codes produce a labeled fallback embedding the raw code so the report
// never silently drops a document class.
func TranslateDocumentType(code string) string {
	if label, ok := documentTypeLabels[code]; ok {
		return label
	}
	if code == "" {
		code = "N/A"
	}
	return fmt.Sprintf("Desconocido (%s)", code)
}

// ExtractIssuer extracts the Emisor element, falling back to the legacy 3.3
// namespace. A missing element yields an all-nil Party, never an error.
func (e *Extractor) ExtractIssuer(root *etree.Element) models.Party {
	emisor := e.namespaces.FindFirst(root, []string{"Emisor"}, NSCFDI, NSCFDI33)
	if emisor == nil {
		return models.Party{}
	}
	return models.Party{
		RFC:       attrOrNil(emisor, "Rfc"),
		Name:      attrOrDefault(emisor, "Nombre", DefaultName),
		TaxRegime: attrOrNil(emisor, "RegimenFiscal"),
	}
}

// ExtractRecipient extracts the Receptor element with the same fallback and
// absence semantics as ExtractIssuer.
func (e *Extractor) ExtractRecipient(root *etree.Element) models.Party {
	receptor := e.namespaces.FindFirst(root, []string{"Receptor"}, NSCFDI, NSCFDI33)
	if receptor == nil {
		return models.Party{}
	}
	return models.Party{
		RFC:            attrOrNil(receptor, "Rfc"),
		Name:           attrOrDefault(receptor, "Nombre", DefaultName),
		TaxRegime:      attrOrNil(receptor, "RegimenFiscalReceptor"),
		UsoCFDI:        attrOrNil(receptor, "UsoCFDI"),
		FiscalDomicile: attrOrNil(receptor, "DomicilioFiscalReceptor"),
	}
}

// ExtractLineItems extracts every Concepto with its nested tax entries.
func (e *Extractor) ExtractLineItems(root *etree.Element) []models.LineItem {
	conceptos := e.namespaces.FindAll(root, []string{"Conceptos", "Concepto"}, NSCFDI, NSCFDI33)

	items := make([]models.LineItem, 0, len(conceptos))
	for _, concepto := range conceptos {
		items = append(items, models.LineItem{
			ProductCode: attrOrNil(concepto, "ClaveProdServ"),
			Quantity:    attrFloat(concepto, "Cantidad"),
			UnitCode:    attrOrNil(concepto, "ClaveUnidad"),
			Description: attrOrNil(concepto, "Descripcion"),
			UnitValue:   attrFloat(concepto, "ValorUnitario"),
			Amount:      attrFloat(concepto, "Importe"),
			Discount:    attrFloat(concepto, "Descuento"),
			TaxObject:   attrOrNil(concepto, "ObjetoImp"),
			Taxes:       e.ExtractTaxes(concepto),
		})
	}
	return items
}

// ExtractTaxes collects Traslado and Retencion entries from all descendants
// of el, in document order. The scan uses the current-generation namespace
// only: legacy documents that matter here declare their tax elements under
// the same prefix convention as their line items. Called with a Concepto for
// per-item taxes and with the document root for the legacy flattened view.
func (e *Extractor) ExtractTaxes(el *etree.Element) models.TaxInfo {
	taxes := models.TaxInfo{
		Transfers:    []models.TaxEntry{},
		Withholdings: []models.TaxEntry{},
	}
	for _, traslado := range e.namespaces.FindAllAnywhere(el, "Traslado", NSCFDI) {
		taxes.Transfers = append(taxes.Transfers, taxEntry(traslado, ""))
	}
	for _, retencion := range e.namespaces.FindAllAnywhere(el, "Retencion", NSCFDI) {
		taxes.Withholdings = append(taxes.Withholdings, taxEntry(retencion, ""))
	}
	return taxes
}

// ExtractStamp extracts the Timbre Fiscal Digital, or nil when the document
// is untimbred.
func (e *Extractor) ExtractStamp(root *etree.Element) *models.FiscalStamp {
	timbre := e.namespaces.FindFirstAnywhere(root, "TimbreFiscalDigital", NSTFD)
	if timbre == nil {
		return nil
	}
	return &models.FiscalStamp{
		UUID:             attrOrNil(timbre, "UUID"),
		StampedAt:        attrOrNil(timbre, "FechaTimbrado"),
		ProviderRFC:      attrOrNil(timbre, "RfcProvCertif"),
		SATCertificateNo: attrOrNil(timbre, "NoCertificadoSAT"),
	}
}

// ExtractComplements detects the complements attached to the document.
// A kind appears in the result only when its container element exists; a
// present Pagos container with zero Pago children yields the payments key
// with an empty list.
func (e *Extractor) ExtractComplements(root *etree.Element) models.Complements {
	complements := models.Complements{}

	pagos := e.namespaces.FindFirstAnywhere(root, "Pagos", NSPagos20, NSPagos10)
	if pagos != nil {
		complements.Payments = e.extractPayments(pagos)
	}

	// Further complement kinds (nomina, carta porte) plug in here following
	// the same detect-then-extract shape.

	return complements
}

// extractPayments extracts every Pago under a Pagos container, tolerant of
// both complement generations at each nesting level.
func (e *Extractor) extractPayments(pagos *etree.Element) *models.PaymentComplement {
	complement := &models.PaymentComplement{Payments: []models.Payment{}}

	for _, pago := range e.namespaces.FindAllAnywhere(pagos, "Pago", NSPagos20, NSPagos10) {
		payment := models.Payment{
			Date:             attrOrNil(pago, "FechaPago"),
			PaymentForm:      attrOrNil(pago, "FormaDePagoP"),
			Currency:         attrOrNil(pago, "MonedaP"),
			Amount:           attrFloat(pago, "Monto"),
			RelatedDocuments: []models.RelatedDocument{},
		}

		for _, doc := range e.namespaces.FindAllAnywhere(pago, "DoctoRelacionado", NSPagos20, NSPagos10) {
			related := models.RelatedDocument{
				DocumentID:       attrOrNil(doc, "IdDocumento"),
				Serie:            attrOrNil(doc, "Serie"),
				Folio:            attrOrNil(doc, "Folio"),
				Currency:         attrOrNil(doc, "MonedaDR"),
				PriorBalance:     attrFloat(doc, "ImpSaldoAnt"),
				AmountPaid:       attrFloat(doc, "ImpPagado"),
				RemainingBalance: attrFloat(doc, "ImpSaldoInsoluto"),
				Transfers:        []models.TaxEntry{},
			}

			if impuestos := e.namespaces.FindFirstAnywhere(doc, "ImpuestosDR", NSPagos20, NSPagos10); impuestos != nil {
				for _, traslado := range e.namespaces.FindAllAnywhere(impuestos, "TrasladoDR", NSPagos20, NSPagos10) {
					related.Transfers = append(related.Transfers, taxEntry(traslado, "DR"))
				}
			}

			payment.RelatedDocuments = append(payment.RelatedDocuments, related)
		}

		complement.Payments = append(complement.Payments, payment)
	}

	return complement
}

// taxEntry reads one tax element. The payment complement uses the same
// attribute set with a "DR" suffix, so the suffix is a parameter.
func taxEntry(el *etree.Element, suffix string) models.TaxEntry {
	return models.TaxEntry{
		Base:       attrFloat(el, "Base"+suffix),
		Tax:        attrOrNil(el, "Impuesto"+suffix),
		FactorType: attrOrNil(el, "TipoFactor"+suffix),
		RateOrFee:  attrFloat(el, "TasaOCuota"+suffix),
		Amount:     attrFloat(el, "Importe"+suffix),
	}
}

// attrOrNil returns the attribute value, or nil when the attribute is
// missing. Used for identity fields where absence must stay observable.
func attrOrNil(el *etree.Element, key string) *string {
	attr := el.SelectAttr(key)
	if attr == nil {
		return nil
	}
	value := attr.Value
	return &value
}

// attrOrDefault returns the attribute value, or the default when missing.
func attrOrDefault(el *etree.Element, key, fallback string) *string {
	value := el.SelectAttrValue(key, fallback)
	return &value
}

// attrFloat safely parses a numeric attribute, substituting 0 when the
// attribute is missing or not a number. Numeric fields are always set.
func attrFloat(el *etree.Element, key string) float64 {
	raw := el.SelectAttrValue(key, "")
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
