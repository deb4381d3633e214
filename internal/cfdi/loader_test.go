package cfdi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileNotFound(t *testing.T) {
	e := newTestExtractor(t)

	doc, err := e.Load(filepath.Join(t.TempDir(), "missing.xml"))

	assert.Nil(t, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, Classify(err))
}

func TestLoad_Directory(t *testing.T) {
	e := newTestExtractor(t)

	doc, err := e.Load(t.TempDir())

	assert.Nil(t, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRead)
	assert.Equal(t, KindUnknownRead, Classify(err))
}

func TestLoadBytes_Malformed(t *testing.T) {
	e := newTestExtractor(t)

	cases := map[string]string{
		"truncated":       `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4"><cfdi:Emisor`,
		"unclosed root":   `<Comprobante Version="4.0">`,
		"mismatched tags": `<Comprobante><Emisor></Receptor></Comprobante>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := e.LoadBytes([]byte(body))
			assert.Nil(t, doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedXML)
			assert.Equal(t, KindMalformedXML, Classify(err))
		})
	}
}

func TestLoadBytes_NoRoot(t *testing.T) {
	e := newTestExtractor(t)

	doc, err := e.LoadBytes([]byte("   \n"))

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrMalformedXML)
}

func TestProcessFile_Success(t *testing.T) {
	e := newTestExtractor(t)
	path := filepath.Join(t.TempDir(), "factura.xml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioDoc), 0o644))

	record, err := e.ProcessFile(path)

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, path, record.Source)
	assert.Equal(t, "4.0", record.Version)
	assert.Equal(t, "A", record.General.Serie)
}

func TestProcessBytes_Success(t *testing.T) {
	e := newTestExtractor(t)

	record, err := e.ProcessBytes("upload-1", []byte(minimalDoc))

	require.NoError(t, err)
	assert.Equal(t, "upload-1", record.Source)
	require.Len(t, record.LineItems, 1)
}
