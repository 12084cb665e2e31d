package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_CamposDeServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Service: "inventario"}, &buf)

	l.Component("ledger").Info().Str("branch_id", "suc-1").Msg("movimiento registrado")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "inventario", line["service"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "suc-1", line["branch_id"])
	assert.Equal(t, "info", line["level"])
}

func TestLogger_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "WARN"}, &buf)

	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
