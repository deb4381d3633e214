package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/cfdi"
)

const sampleInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0" Serie="A" Folio="1" Total="116" TipoDeComprobante="I">
  <cfdi:Emisor Rfc="DEMO010101001" Nombre="Demo SA de CV"/>
  <cfdi:Receptor Rfc="XAXX010101000"/>
  <cfdi:Conceptos>
    <cfdi:Concepto Descripcion="Servicio" Importe="100"/>
  </cfdi:Conceptos>
</cfdi:Comprobante>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	extractor := cfdi.NewExtractor(zap.NewNop())
	return NewServer(DefaultServerConfig(), extractor, nil, zap.NewNop())
}

func doRequest(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestExtract_ValidDocument(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/extract", sampleInvoice,
		map[string]string{"X-Source-Name": "factura_a1.xml"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	record, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "factura_a1.xml", record["source"])
	assert.Equal(t, "4.0", record["version"])

	general, ok := record["general"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A", general["serie"])
	assert.Equal(t, "Ingreso (Factura)", general["document_type"])
}

func TestExtract_DefaultSourceName(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/extract", sampleInvoice, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	record, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "http-upload", record["source"])
}

func TestExtract_EmptyBody(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/extract", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
}

func TestExtract_MalformedDocument(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/extract", "<Comprobante><Emisor", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, cfdi.KindMalformedXML, resp.Kind)
}

func TestListDocuments_NoStore(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/documents", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
}
