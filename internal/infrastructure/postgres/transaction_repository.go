package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del libro de transacciones sobre PostgreSQL.
// Solo-append: este adaptador no expone UPDATE ni DELETE de cabeceras o líneas;
// la única mutación es MarkReversed.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// CreateHeader persiste la cabecera de una transacción.
func (r *TransactionRepo) CreateHeader(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, sequence_no, category, ref_type, ref_id, status, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.SequenceNo, tx.Category, tx.RefType, tx.RefID,
		tx.Status, tx.Notes, tx.CreatedAt, tx.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transaction header: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de transacción.
func (r *TransactionRepo) CreateLine(ctx context.Context, line *entity.TransactionLine) error {
	query := `
		INSERT INTO stock_transaction_lines (transaction_id, product_id, quantity, direction, unit_cost, reason)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		line.TransactionID, line.ProductID, line.Quantity, line.Direction, line.UnitCost, line.Reason,
	)
	if err != nil {
		return fmt.Errorf("create transaction line: %w", err)
	}
	return nil
}

// NextSequence toma el siguiente valor de la secuencia de consecutivos. La secuencia
// avanza aunque la transacción haga rollback: los huecos son válidos, la monotonía no.
func (r *TransactionRepo) NextSequence(ctx context.Context) (string, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('stock_transactions_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}
	return fmt.Sprintf("TRX-%09d", n), nil
}

const headerColumns = "id, sequence_no, category, ref_type, ref_id, status, notes, created_at, created_by"

// GetByID obtiene una cabecera por ID; nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.StockTransaction, error) {
	query := `SELECT ` + headerColumns + ` FROM stock_transactions WHERE id = $1`
	var t entity.StockTransaction
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SequenceNo, &t.Category, &t.RefType, &t.RefID,
		&t.Status, &t.Notes, &t.CreatedAt, &t.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// LinesByTransaction obtiene las líneas de una transacción.
func (r *TransactionRepo) LinesByTransaction(ctx context.Context, id string) ([]*entity.TransactionLine, error) {
	query := `
		SELECT transaction_id, product_id, quantity, direction, unit_cost, reason
		FROM stock_transaction_lines WHERE transaction_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("lines by transaction: %w", err)
	}
	defer rows.Close()
	var out []*entity.TransactionLine
	for rows.Next() {
		var l entity.TransactionLine
		if err := rows.Scan(&l.TransactionID, &l.ProductID, &l.Quantity, &l.Direction, &l.UnitCost, &l.Reason); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// MarkReversed cambia COMPLETED -> REVERSED. Cero filas afectadas significa que la
// transacción no existe o ya no está en COMPLETED.
func (r *TransactionRepo) MarkReversed(ctx context.Context, id string) error {
	query := `UPDATE stock_transactions SET status = $2 WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(ctx, query, id, entity.StatusReversed, entity.StatusCompleted)
	if err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// HistoryByProduct devuelve las líneas históricas (COMPLETED y REVERSED) del producto
// en orden de commit, con la cantidad firmada resuelta por la tabla de signos.
func (r *TransactionRepo) HistoryByProduct(ctx context.Context, productID string) ([]repository.MovementRecord, error) {
	query := `
		SELECT t.id, t.sequence_no, t.category, t.status, l.product_id, l.quantity, l.direction, l.unit_cost, l.reason, t.created_at
		FROM stock_transaction_lines l
		JOIN stock_transactions t ON t.id = l.transaction_id
		WHERE l.product_id = $1 AND t.status IN ($2, $3)
		ORDER BY t.sequence_no ASC`
	rows, err := r.q.Query(ctx, query, productID, entity.StatusCompleted, entity.StatusReversed)
	if err != nil {
		return nil, fmt.Errorf("history by product: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByProduct lista movimientos del producto en un rango de fechas, más recientes
// primero (paginado).
func (r *TransactionRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]repository.MovementRecord, error) {
	query := `
		SELECT t.id, t.sequence_no, t.category, t.status, l.product_id, l.quantity, l.direction, l.unit_cost, l.reason, t.created_at
		FROM stock_transaction_lines l
		JOIN stock_transactions t ON t.id = l.transaction_id
		WHERE l.product_id = $1 AND t.status IN ($2, $3)`
	args := []any{productID, entity.StatusCompleted, entity.StatusReversed}
	pos := 4
	if from != nil {
		query += fmt.Sprintf(" AND t.created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND t.created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += " ORDER BY t.sequence_no DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, limit)
		pos++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// Count devuelve el total de transacciones del libro.
func (r *TransactionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func scanMovements(rows pgx.Rows) ([]repository.MovementRecord, error) {
	var out []repository.MovementRecord
	for rows.Next() {
		var (
			m         repository.MovementRecord
			line      entity.TransactionLine
			direction int
		)
		if err := rows.Scan(
			&m.TransactionID, &m.SequenceNo, &m.Category, &m.Status,
			&m.ProductID, &line.Quantity, &direction, &m.UnitCost, &m.Reason, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		line.Direction = direction
		m.Quantity = line.SignedQuantity(m.Category)
		out = append(out, m)
	}
	return out, rows.Err()
}
