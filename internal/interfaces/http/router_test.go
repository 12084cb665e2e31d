package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-sucursales/internal/interfaces/http"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	branchCentro = "suc-centro"
	branchNorte  = "suc-norte"
	prodArroz    = "prod-arroz"
	prodAlimento = "prod-alimento-perro"
)

// newAPI arma la API completa sobre el store en memoria con dos sucursales y dos productos.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.SeedBranch(entity.Branch{ID: branchCentro, Name: "Centro"})
	store.SeedBranch(entity.Branch{ID: branchNorte, Name: "Norte"})
	store.SeedProduct(entity.Product{ID: prodArroz, SKU: "ARR-1KG", Name: "Arroz 1kg", MinStock: decimal.NewFromInt(5)})
	store.SeedProduct(entity.Product{ID: prodAlimento, SKU: "ALP-20KG", Name: "Alimento perro 20kg", IsWeighted: true})

	deps := store.Deps()
	ledger := inventory.NewStockLedger(deps, nil)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop(), nil))
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        ledger,
		Transfers:     inventory.NewTransferWorkflow(deps, ledger, nil),
		Bags:          inventory.NewOpenBagTracker(deps, ledger, nil),
		Counts:        inventory.NewReconciliationEngine(ledger, nil),
		DeliveryNotes: inventory.NewDeliveryNotes(deps, pdf.NewMarotoPDFGenerator()),
		JWTSecret:     testJWTSecret,
	})
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	} `json:"meta"`
}

// call ejecuta la petición con un token del rol indicado y decodifica el envelope.
func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func purchase(t *testing.T, app *fiber.App, branchID, productID string, qty int64) {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/inventory/movements", apphttp.RoleVendedor, fiber.Map{
		"branch_id":  branchID,
		"product_id": productID,
		"type":       "PURCHASE",
		"quantity":   qty,
	})
	require.Equal(t, http.StatusCreated, status, "compra: %+v", env.Error)
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SinToken_Retorna401(t *testing.T) {
	app := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/inventory/movements", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 1: la compra responde 201 con el movimiento y el saldo resultante.
func TestAPI_RegistrarCompra_DevuelveMovimientoYSaldo(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodPost, "/api/inventory/movements", apphttp.RoleVendedor, fiber.Map{
		"branch_id":  branchCentro,
		"product_id": prodArroz,
		"type":       "PURCHASE",
		"quantity":   "10",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)

	var data struct {
		Movement struct {
			Type           string          `json:"type"`
			Quantity       decimal.Decimal `json:"quantity"`
			QuantityBefore decimal.Decimal `json:"quantity_before"`
			QuantityAfter  decimal.Decimal `json:"quantity_after"`
			PerformedBy    string          `json:"performed_by"`
		} `json:"movement"`
		Stock struct {
			Quantity decimal.Decimal `json:"quantity"`
		} `json:"stock"`
	}
	decodeData(t, env, &data)
	assert.Equal(t, "PURCHASE", data.Movement.Type)
	assert.True(t, data.Movement.QuantityBefore.IsZero())
	assert.True(t, data.Movement.QuantityAfter.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, testUserID, data.Movement.PerformedBy, "performed_by sale del token")
	assert.True(t, data.Stock.Quantity.Equal(decimal.NewFromInt(10)))
}

// Caso 2: venta mayor al saldo → 409 con saldo vigente en los detalles.
func TestAPI_VentaSinStock_Retorna409ConSaldo(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 3)

	status, env := call(t, app, http.MethodPost, "/api/inventory/movements", apphttp.RoleVendedor, fiber.Map{
		"branch_id":  branchCentro,
		"product_id": prodArroz,
		"type":       "SALE",
		"quantity":   -5,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeInsufficientStock, env.Error.Code)
	assert.Equal(t, "3", env.Error.Details["current_quantity"])
	assert.Equal(t, "5", env.Error.Details["requested_quantity"])
}

func TestAPI_CuerpoInvalido_Retorna400(t *testing.T) {
	app := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/movements", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleVendedor))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), apphttp.CodeInvalidBody)
}

func TestAPI_SaldoSinHistorial_DevuelveCero(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodGet, "/api/branches/"+branchNorte+"/stock/"+prodArroz, apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Quantity decimal.Decimal `json:"quantity"`
	}
	decodeData(t, env, &data)
	assert.True(t, data.Quantity.IsZero())
}

func TestAPI_ListarMovimientos_Pagina(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 1)
	purchase(t, app, branchCentro, prodArroz, 2)
	purchase(t, app, branchNorte, prodArroz, 3)

	status, env := call(t, app, http.MethodGet, "/api/inventory/movements?branch_id="+branchCentro+"&limit=1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Total)
	assert.Equal(t, 1, env.Meta.Limit)

	var data []map[string]any
	decodeData(t, env, &data)
	assert.Len(t, data, 1)
}

func TestAPI_ListarMovimientos_FechaInvalida_Retorna400(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodGet, "/api/inventory/movements?from=ayer", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeValidation, env.Error.Code)
	assert.Equal(t, "from", env.Error.Details["field"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes, mermas y conteos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Ajuste_VendedorRecibe403(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodPost, "/api/inventory/adjustments", apphttp.RoleVendedor, fiber.Map{
		"branch_id": branchCentro, "product_id": prodArroz, "quantity": 2, "reason": "sobrante",
	})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeForbidden, env.Error.Code)
}

func TestAPI_AjusteSinMotivo_Retorna400(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodPost, "/api/inventory/adjustments", apphttp.RoleEncargado, fiber.Map{
		"branch_id": branchCentro, "product_id": prodArroz, "quantity": 2,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeValidation, env.Error.Code)
	assert.Equal(t, "reason", env.Error.Details["field"])
}

// La ruta genérica no admite tipos con flujo propio: ajustes y traslados no se pueden forzar por ahí.
func TestAPI_MovimientoGenerico_RechazaTiposConFlujoPropio(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)

	cases := []fiber.Map{
		{"branch_id": branchCentro, "product_id": prodArroz, "type": "ADJUSTMENT_MINUS", "quantity": -3, "reason": "x"},
		{"branch_id": branchCentro, "product_id": prodArroz, "type": "SHRINKAGE", "quantity": -1, "reason": "DAMAGED"},
		{"branch_id": branchCentro, "product_id": prodArroz, "type": "INVENTORY_COUNT", "quantity": -2},
		{"branch_id": branchNorte, "product_id": prodArroz, "type": "TRANSFER_IN", "quantity": 50,
			"reference_id": "traslado-inexistente", "related_branch_id": branchCentro},
		{"branch_id": branchCentro, "product_id": prodArroz, "type": "TRANSFER_OUT", "quantity": -5,
			"reference_id": "traslado-inexistente", "related_branch_id": branchNorte},
	}
	for _, body := range cases {
		status, env := call(t, app, http.MethodPost, "/api/inventory/movements", apphttp.RoleVendedor, body)
		assert.Equal(t, http.StatusBadRequest, status, body["type"])
		require.NotNil(t, env.Error)
		assert.Equal(t, apphttp.CodeValidation, env.Error.Code)
		assert.Equal(t, "type", env.Error.Details["field"])
	}

	stockOf := func(branchID string) decimal.Decimal {
		status, env := call(t, app, http.MethodGet, "/api/branches/"+branchID+"/stock/"+prodArroz, apphttp.RoleVendedor, nil)
		require.Equal(t, http.StatusOK, status)
		var data struct {
			Quantity decimal.Decimal `json:"quantity"`
		}
		decodeData(t, env, &data)
		return data.Quantity
	}
	assert.True(t, stockOf(branchCentro).Equal(decimal.NewFromInt(10)), "origen intacto")
	assert.True(t, stockOf(branchNorte).IsZero(), "sin traslado no hay ingreso")
}

func TestAPI_Merma_DescuentaStock(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)

	status, env := call(t, app, http.MethodPost, "/api/inventory/shrinkage", apphttp.RoleAdmin, fiber.Map{
		"branch_id": branchCentro, "product_id": prodArroz, "quantity": 2, "reason": "DAMAGED",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)

	_, env = call(t, app, http.MethodGet, "/api/branches/"+branchCentro+"/stock/"+prodArroz, apphttp.RoleVendedor, nil)
	var data struct {
		Quantity        decimal.Decimal `json:"quantity"`
		ActualShrinkage decimal.Decimal `json:"actual_shrinkage"`
	}
	decodeData(t, env, &data)
	assert.True(t, data.Quantity.Equal(decimal.NewFromInt(8)))
	assert.True(t, data.ActualShrinkage.Equal(decimal.NewFromInt(2)))
}

func TestAPI_Conteo_ResumenDeAjustes(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)

	status, env := call(t, app, http.MethodPost, "/api/inventory/counts", apphttp.RoleEncargado, fiber.Map{
		"branch_id": branchCentro,
		"entries": []fiber.Map{
			{"product_id": prodArroz, "counted_quantity": 7},
			{"product_id": prodAlimento, "counted_quantity": 0},
		},
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)

	var data struct {
		Processed   int `json:"processed"`
		Adjustments int `json:"adjustments"`
		NoChange    int `json:"no_change"`
	}
	decodeData(t, env, &data)
	assert.Equal(t, 2, data.Processed)
	assert.Equal(t, 1, data.Adjustments)
	assert.Equal(t, 1, data.NoChange)
}

func TestAPI_StockBajo_IncluyeFilasEnElMinimo(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 3)
	purchase(t, app, branchNorte, prodArroz, 30)

	status, env := call(t, app, http.MethodGet, "/api/inventory/low-stock?branch_id="+branchCentro, apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Stock []struct {
			BranchID  string `json:"branch_id"`
			ProductID string `json:"product_id"`
		} `json:"stock"`
		OpenBags []any `json:"open_bags"`
	}
	decodeData(t, env, &data)
	require.Len(t, data.Stock, 1)
	assert.Equal(t, prodArroz, data.Stock[0].ProductID)
	assert.Empty(t, data.OpenBags)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

type transferData struct {
	ID             string `json:"id"`
	TransferNumber string `json:"transfer_number"`
	Status         string `json:"status"`
	HasVariance    bool   `json:"has_variance"`
	Items          []struct {
		ID       string           `json:"id"`
		Variance *decimal.Decimal `json:"variance"`
	} `json:"items"`
}

func createTransfer(t *testing.T, app *fiber.App, qty int64) transferData {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/transfers", apphttp.RoleVendedor, fiber.Map{
		"source_branch_id":      branchCentro,
		"destination_branch_id": branchNorte,
		"items":                 []fiber.Map{{"product_id": prodArroz, "quantity": qty}},
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	var tr transferData
	decodeData(t, env, &tr)
	return tr
}

// Caso 1: ciclo completo con faltante en la recepción.
func TestAPI_Traslado_CicloCompletoConVarianza(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)

	tr := createTransfer(t, app, 4)
	assert.Equal(t, "PENDING", tr.Status)
	assert.Equal(t, "TR-000001", tr.TransferNumber)

	status, env := call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/approve", apphttp.RoleEncargado, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	decodeData(t, env, &tr)
	assert.Equal(t, "IN_TRANSIT", tr.Status)

	status, env = call(t, app, http.MethodGet, "/api/branches/"+branchNorte+"/incoming", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	var incoming []struct {
		ProductID string          `json:"product_id"`
		Quantity  decimal.Decimal `json:"quantity"`
	}
	decodeData(t, env, &incoming)
	require.Len(t, incoming, 1)
	assert.True(t, incoming[0].Quantity.Equal(decimal.NewFromInt(4)))

	status, env = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/receive", apphttp.RoleVendedor, fiber.Map{
		"items": []fiber.Map{{"item_id": tr.Items[0].ID, "quantity": 3}},
		"notes": "bolsa rota",
	})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	decodeData(t, env, &tr)
	assert.Equal(t, "RECEIVED", tr.Status)
	assert.True(t, tr.HasVariance)
	require.NotNil(t, tr.Items[0].Variance)
	assert.True(t, tr.Items[0].Variance.Equal(decimal.NewFromInt(-1)))
}

func TestAPI_Traslado_AprobarVendedorRecibe403(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)
	tr := createTransfer(t, app, 4)

	status, _ := call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/approve", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_Traslado_RecibirPendiente_Retorna409ConEstado(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)
	tr := createTransfer(t, app, 4)

	status, env := call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/receive", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeInvalidTransition, env.Error.Code)
	assert.Equal(t, "PENDING", env.Error.Details["current_status"])
}

func TestAPI_Traslado_CancelarEnTransitoDevuelveStock(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)
	tr := createTransfer(t, app, 4)
	status, _ := call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/approve", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/cancel", apphttp.RoleAdmin, fiber.Map{"reason": "camión averiado"})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	decodeData(t, env, &tr)
	assert.Equal(t, "CANCELLED", tr.Status)

	_, env = call(t, app, http.MethodGet, "/api/branches/"+branchCentro+"/stock/"+prodArroz, apphttp.RoleVendedor, nil)
	var stock struct {
		Quantity decimal.Decimal `json:"quantity"`
	}
	decodeData(t, env, &stock)
	assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestAPI_Traslado_Inexistente_Retorna404(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodGet, "/api/transfers/no-existe", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeNotFound, env.Error.Code)
	assert.Equal(t, "no-existe", env.Error.Details["id"])
}

func TestAPI_Traslado_RemitoPDF(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodArroz, 10)
	tr := createTransfer(t, app, 4)
	status, _ := call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/approve", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/api/transfers/"+tr.ID+"/delivery-note", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleVendedor))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "remito-TR-000001.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_Traslados_FiltroEstadoDesconocido_Retorna400(t *testing.T) {
	app := newAPI(t)
	status, env := call(t, app, http.MethodGet, "/api/transfers?status=PERDIDO", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeValidation, env.Error.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bolsas abiertas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Bolsa_AbrirVenderCerrar(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodAlimento, 2)

	status, env := call(t, app, http.MethodPost, "/api/open-bags", apphttp.RoleVendedor, fiber.Map{
		"branch_id": branchCentro, "product_id": prodAlimento, "original_weight": 20,
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	var bag struct {
		ID                string          `json:"id"`
		Status            string          `json:"status"`
		RemainingWeight   decimal.Decimal `json:"remaining_weight"`
		LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	}
	decodeData(t, env, &bag)
	assert.Equal(t, "OPEN", bag.Status)
	assert.True(t, bag.LowStockThreshold.Equal(decimal.NewFromInt(3)), "umbral por defecto 15%% de 20")

	status, env = call(t, app, http.MethodPost, "/api/open-bags/"+bag.ID+"/deduct", apphttp.RoleVendedor, fiber.Map{"quantity": "2.5"})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	decodeData(t, env, &bag)
	assert.True(t, bag.RemainingWeight.Equal(decimal.RequireFromString("17.5")))

	status, env = call(t, app, http.MethodPost, "/api/open-bags/"+bag.ID+"/deduct", apphttp.RoleVendedor, fiber.Map{"quantity": 18})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeInsufficientStock, env.Error.Code)

	status, env = call(t, app, http.MethodPost, "/api/open-bags/"+bag.ID+"/close", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	decodeData(t, env, &bag)
	assert.Equal(t, "EMPTY", bag.Status)
	assert.True(t, bag.RemainingWeight.IsZero())
}

func TestAPI_Bolsa_SegundaAperturaRetorna409(t *testing.T) {
	app := newAPI(t)
	purchase(t, app, branchCentro, prodAlimento, 2)
	body := fiber.Map{"branch_id": branchCentro, "product_id": prodAlimento, "original_weight": 20}

	status, _ := call(t, app, http.MethodPost, "/api/open-bags", apphttp.RoleVendedor, body)
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, app, http.MethodPost, "/api/open-bags", apphttp.RoleVendedor, body)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apphttp.CodeBagAlreadyOpen, env.Error.Code)
}
