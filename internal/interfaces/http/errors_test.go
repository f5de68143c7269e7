package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/domain"
)

// TestRespondError_ErrorInternoNoFiltraDetalle: un fallo de infraestructura sale
// como 500 con mensaje fijo; el texto del error (DSN, host, credenciales) se queda
// del lado del servidor.
func TestRespondError_ErrorInternoNoFiltraDetalle(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, fmt.Errorf("conectar postgres://inventario:secreta@db:5432/stock: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secreta", "el cuerpo no debe exponer credenciales")
	assert.NotContains(t, string(raw), "postgres://", "el cuerpo no debe exponer el DSN")
	assert.NotContains(t, string(raw), "connection refused", "el cuerpo no debe exponer el detalle del adaptador")

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "INTERNAL", body.Code)
	assert.Equal(t, "error interno", body.Message)
}

// TestRespondError_ErroresDeDominioConservanSuMensaje: los errores de dominio sí
// llevan mensaje propio, solo el caso por defecto se opaca.
func TestRespondError_ErroresDeDominioConservanSuMensaje(t *testing.T) {
	app := fiber.New()
	app.Get("/conflicto", func(c *fiber.Ctx) error {
		return respondError(c, fmt.Errorf("set_stock: %w", domain.ErrConflict))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/conflicto", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CONFLICT", body.Code)
}
