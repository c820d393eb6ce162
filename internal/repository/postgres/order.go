package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

// maxCodeAttempts bounds how many codes CreateOrder tries before giving up.
const maxCodeAttempts = 5

const orderColumns = `id, code, subtotal, delivery_fee, total, full_name, phone, email, address, city, notes,
	delivery_zone, payment_method, payment_reference, payment_confirmation, status, created_at, updated_at`

type orderRepository struct {
	db      *sql.DB
	newCode func() string
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db, newCode: entity.NewOrderCode}
}

func (r *orderRepository) CreateOrder(ctx context.Context, draft entity.OrderDraft, proposedCode string) (*entity.Order, error) {
	if err := repository.ValidateDraft(draft); err != nil {
		return nil, err
	}

	code := entity.NormalizeOrderCode(proposedCode)
	if code == "" {
		code = r.newCode()
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		order, err := r.insertOrder(ctx, draft, code, entity.NormalizeOrderCode(proposedCode))
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, errCodeTaken) {
			return nil, err
		}
		code = r.newCode()
	}
	return nil, fmt.Errorf("failed to allocate a unique order code after %d attempts", maxCodeAttempts)
}

var errCodeTaken = errors.New("order code taken")

func (r *orderRepository) insertOrder(ctx context.Context, draft entity.OrderDraft, code, reference string) (*entity.Order, error) {
	now := time.Now().UTC()
	if reference == "" {
		reference = code
	}
	order := &entity.Order{
		ID:                  uuid.NewString(),
		Code:                code,
		Lines:               draft.Lines,
		Subtotal:            draft.Subtotal,
		DeliveryFee:         draft.DeliveryFee,
		Total:               draft.Total,
		Customer:            draft.Customer,
		DeliveryZone:        draft.DeliveryZone,
		PaymentMethod:       draft.PaymentMethod,
		PaymentReference:    reference,
		PaymentConfirmation: draft.PaymentConfirmation,
		Status:              entity.OrderStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ON CONFLICT on the code: another order already holds it, try another.
	var id string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (code) DO NOTHING RETURNING id`,
		order.ID, order.Code, order.Subtotal, order.DeliveryFee, order.Total,
		order.Customer.FullName, order.Customer.Phone, order.Customer.Email, order.Customer.Address,
		order.Customer.City, order.Customer.Notes, order.DeliveryZone, order.PaymentMethod,
		order.PaymentReference, order.PaymentConfirmation, order.Status, order.CreatedAt, order.UpdatedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errCodeTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, name, unit_price, quantity) VALUES ($1, $2, $3, $4, $5)",
			order.ID, line.ProductID, line.Name, line.UnitPrice, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := appendEvents(ctx, tx, order.ID, entity.StreamTypeOrder, 0, []entity.Event{repository.PlacedEvent(order)}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	return r.getOrder(ctx, "code", entity.NormalizeOrderCode(code))
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOrder(ctx, "id", id)
}

func (r *orderRepository) getOrder(ctx context.Context, column, value string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE "+column+" = $1", value)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id string, expectedVersion int, change entity.OrderStatusChanged) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The row lock taken here serialises status writers on the same order.
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3",
		change.To, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("order %s: %w", id, repository.ErrNotFound)
	}

	if err := appendEvents(ctx, tx, id, entity.StreamTypeOrder, expectedVersion, []entity.Event{change}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.GetOrderByID(ctx, id)
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	// Fetch items for each order
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, order *entity.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, name, unit_price, quantity FROM order_items WHERE order_id = $1 ORDER BY id",
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.Code, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&o.Customer.FullName, &o.Customer.Phone, &o.Customer.Email, &o.Customer.Address,
		&o.Customer.City, &o.Customer.Notes, &o.DeliveryZone, &o.PaymentMethod,
		&o.PaymentReference, &o.PaymentConfirmation, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
