package models

import "time"

// NormalizedRecord is the version-independent representation of one CFDI
// document. It is assembled once per source document and owned by the caller
// after return; the engine keeps no reference to it.
type NormalizedRecord struct {
	Source      string      `json:"source"`
	ProcessedAt time.Time   `json:"processed_at"`
	Version     string      `json:"version"`
	General     GeneralData `json:"general"`
	Issuer      Party       `json:"issuer"`
	Recipient   Party       `json:"recipient"`
	LineItems   []LineItem  `json:"line_items"`
	// Stamp is nil when the document carries no Timbre Fiscal Digital.
	Stamp *FiscalStamp `json:"stamp,omitempty"`
	// DocumentTaxes flattens every tax entry found anywhere in the document,
	// kept for legacy report columns that read the first transfer directly.
	DocumentTaxes TaxInfo     `json:"document_taxes"`
	Complements   Complements `json:"complements"`
}

// GeneralData holds the root comprobante attributes.
// String fields that the document may omit carry explicit sentinel defaults;
// amounts default to 0 when the attribute is absent.
type GeneralData struct {
	Serie           string  `json:"serie"`
	Folio           string  `json:"folio"`
	IssueDate       *string `json:"issue_date"`
	SubTotal        float64 `json:"subtotal"`
	Total           float64 `json:"total"`
	Currency        string  `json:"currency"`
	DocumentType    string  `json:"document_type"`
	PaymentMethod   string  `json:"payment_method"`
	PlaceOfIssuance string  `json:"place_of_issuance"`
}

// Party is the shared shape for Emisor and Receptor. A nil field means the
// attribute was missing; when the parent element itself is missing the whole
// struct stays all-nil rather than erroring. UsoCFDI and FiscalDomicile are
// only ever populated for recipients.
type Party struct {
	RFC            *string `json:"rfc"`
	Name           *string `json:"name"`
	TaxRegime      *string `json:"tax_regime"`
	UsoCFDI        *string `json:"uso_cfdi,omitempty"`
	FiscalDomicile *string `json:"fiscal_domicile,omitempty"`
}

// IsEmpty reports whether the source element was absent entirely.
func (p Party) IsEmpty() bool {
	return p.RFC == nil && p.Name == nil && p.TaxRegime == nil &&
		p.UsoCFDI == nil && p.FiscalDomicile == nil
}

// LineItem is one Concepto with its nested tax entries.
type LineItem struct {
	ProductCode *string `json:"product_code"`
	Quantity    float64 `json:"quantity"`
	UnitCode    *string `json:"unit_code"`
	Description *string `json:"description"`
	UnitValue   float64 `json:"unit_value"`
	Amount      float64 `json:"amount"`
	Discount    float64 `json:"discount"`
	TaxObject   *string `json:"tax_object"`
	Taxes       TaxInfo `json:"taxes"`
}

// TaxInfo groups transferred and withheld tax entries in document order.
type TaxInfo struct {
	Transfers    []TaxEntry `json:"transfers"`
	Withholdings []TaxEntry `json:"withholdings"`
}

// TaxEntry is one Traslado or Retencion row.
type TaxEntry struct {
	Base       float64 `json:"base"`
	Tax        *string `json:"tax"`
	FactorType *string `json:"factor_type"`
	RateOrFee  float64 `json:"rate_or_fee"`
	Amount     float64 `json:"amount"`
}

// FiscalStamp is the Timbre Fiscal Digital block. Its presence means the
// document was registered with the tax authority.
type FiscalStamp struct {
	UUID             *string `json:"uuid"`
	StampedAt        *string `json:"stamped_at"`
	ProviderRFC      *string `json:"provider_rfc"`
	SATCertificateNo *string `json:"sat_certificate_no"`
}

// Complements holds the optional complement payloads detected on a document.
// A nil payload pointer means the complement was not present at all, which is
// distinct from a present complement with zero entries.
type Complements struct {
	Payments *PaymentComplement `json:"payments,omitempty"`
}

// Kinds lists the detected complement kinds, for operator summaries.
func (c Complements) Kinds() []string {
	var kinds []string
	if c.Payments != nil {
		kinds = append(kinds, "payments")
	}
	return kinds
}

// PaymentComplement is the Pagos complement (generation 1.0 or 2.0).
type PaymentComplement struct {
	Payments []Payment `json:"payments"`
}

// Payment is one Pago element with its related documents.
type Payment struct {
	Date             *string           `json:"date"`
	PaymentForm      *string           `json:"payment_form"`
	Currency         *string           `json:"currency"`
	Amount           float64           `json:"amount"`
	RelatedDocuments []RelatedDocument `json:"related_documents"`
}

// RelatedDocument references an original invoice settled by a payment,
// with its running balances and payment-specific transferred taxes.
type RelatedDocument struct {
	DocumentID       *string    `json:"document_id"`
	Serie            *string    `json:"serie"`
	Folio            *string    `json:"folio"`
	Currency         *string    `json:"currency"`
	PriorBalance     float64    `json:"prior_balance"`
	AmountPaid       float64    `json:"amount_paid"`
	RemainingBalance float64    `json:"remaining_balance"`
	Transfers        []TaxEntry `json:"transfers"`
}
