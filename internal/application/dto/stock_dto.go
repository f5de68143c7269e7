package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitTransactionRequest body para POST /api/stock/transactions.
type SubmitTransactionRequest struct {
	Category string                   `json:"category"`
	RefType  string                   `json:"ref_type,omitempty"`
	RefID    string                   `json:"ref_id,omitempty"`
	Notes    string                   `json:"notes,omitempty"`
	Lines    []TransactionLineRequest `json:"lines"`
}

// TransactionLineRequest línea del body de transacción.
// quantity es magnitud positiva; direction (+1/-1) y reason solo aplican en ADJUSTMENT;
// unit_cost es obligatorio en categorías de entrada.
type TransactionLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Direction int              `json:"direction,omitempty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// AdjustStockRequest body para POST /api/stock/products/:id/adjustments.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
	Notes  string          `json:"notes,omitempty"`
}

// SetStockRequest body para PUT /api/stock/products/:id/level.
type SetStockRequest struct {
	TargetQuantity decimal.Decimal `json:"target_quantity"`
}

// SnapshotResponse snapshot actual de un producto.
type SnapshotResponse struct {
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Version      int64           `json:"version"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MovementDTO movimiento histórico de un producto (cantidad ya firmada).
type MovementDTO struct {
	TransactionID string          `json:"transaction_id"`
	SequenceNo    string          `json:"sequence_no"`
	Category      string          `json:"category"`
	Status        string          `json:"status"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ReconciliationReportDTO resultado de la pasada de conciliación (solo lectura).
type ReconciliationReportDTO struct {
	TotalProducts        int64           `json:"total_products"`
	WithStockRecord      int             `json:"with_stock_record"`
	WithoutStockRecord   int64           `json:"without_stock_record"`
	TotalTransactions    int64           `json:"total_transactions"`
	ZeroCostWithQuantity int             `json:"zero_cost_with_quantity"`
	QuantityMismatches   int             `json:"quantity_mismatches"`
	MismatchedProducts   []string        `json:"mismatched_products,omitempty"`
	TotalInventoryValue  decimal.Decimal `json:"total_inventory_value"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
