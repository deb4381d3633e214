package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "batch:\n  input_dir: input_cfdi\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "input_cfdi", cfg.Batch.InputDir)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "No especificado", cfg.Extractor.DefaultPaymentMethod)
	assert.Equal(t, "output_excel", cfg.Export.OutputDir)
	assert.Equal(t, "reporte_cfdi.xlsx", cfg.Export.ReportName)
	assert.Equal(t, "data/cfdi.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
batch:
  input_dir: /data/facturas
  workers: 8
extractor:
  default_payment_method: Pago parcial
  namespaces:
    cartaporte31: http://www.sat.gob.mx/CartaPorte40
export:
  report_name: cierre_mensual.xlsx
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/data/facturas", cfg.Batch.InputDir)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "Pago parcial", cfg.Extractor.DefaultPaymentMethod)
	assert.Equal(t, "http://www.sat.gob.mx/CartaPorte40", cfg.Extractor.Namespaces["cartaporte31"])
	assert.Equal(t, "cierre_mensual.xlsx", cfg.Export.ReportName)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	path := writeConfig(t, "batch:\n  workers: -1\n")

	cfg, err := Load(path)

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CFDI_SERVER_PORT", "9090")
	path := writeConfig(t, "batch:\n  input_dir: input_cfdi\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}
