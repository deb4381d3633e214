package cfdi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceTable_PrefixOrdering(t *testing.T) {
	table := DefaultNamespaces()

	// The document declares its own prefix names; lookups go by resolved URI.
	root := parseDoc(t, `<x:Comprobante xmlns:x="http://www.sat.gob.mx/cfd/3">
		<x:Emisor Rfc="AAA010101AAA"/>
	</x:Comprobante>`)

	// First candidate (4.0) yields nothing, second (3.3) matches.
	emisor := table.FindFirst(root, []string{"Emisor"}, NSCFDI, NSCFDI33)
	require.NotNil(t, emisor)
	assert.Equal(t, "AAA010101AAA", emisor.SelectAttrValue("Rfc", ""))

	// With only the 4.0 candidate there is no match and no error.
	assert.Nil(t, table.FindFirst(root, []string{"Emisor"}, NSCFDI))
}

func TestNamespaceTable_FindAllAnywhere(t *testing.T) {
	table := DefaultNamespaces()
	root := parseDoc(t, scenarioDoc)

	traslados := table.FindAllAnywhere(root, "Traslado", NSCFDI, NSCFDI33)
	require.Len(t, traslados, 1)
	assert.Equal(t, "0.160000", traslados[0].SelectAttrValue("TasaOCuota", ""))
}

func TestNamespaceTable_Merge(t *testing.T) {
	base := DefaultNamespaces()
	merged := base.Merge(map[string]string{
		NSCarta: "http://www.sat.gob.mx/CartaPorte40",
		"donat": "http://www.sat.gob.mx/donat",
	})

	assert.Equal(t, "http://www.sat.gob.mx/CartaPorte40", merged[NSCarta])
	assert.Equal(t, "http://www.sat.gob.mx/donat", merged["donat"])
	// The receiver is untouched.
	assert.Equal(t, "http://www.sat.gob.mx/CartaPorte31", base[NSCarta])
}
