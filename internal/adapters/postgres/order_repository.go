package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/payway-gateway/internal/domain"
	"github.com/kevin07696/payway-gateway/internal/domain/ports"
)

// OrderRepository implements ports.OrderRepository
type OrderRepository struct {
	db DBTX
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Get loads an order by id
func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, customer_id, balance, payment_method_id, payment_gateway, updated_at
		FROM orders WHERE id = $1`, id)

	var (
		o                 domain.Order
		balance           pgtype.Numeric
		methodID, gateway pgtype.Text
	)
	err := row.Scan(&o.ID, &o.CustomerID, &balance, &methodID, &gateway, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Balance, err = pgNumericToDecimal(balance)
	if err != nil {
		return nil, err
	}
	o.PaymentMethodID = methodID.String
	o.PaymentGateway = gateway.String
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

// Save inserts or updates an order
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	balance, err := decimalToNumeric(o.Balance)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (id, customer_id, balance, payment_method_id, payment_gateway, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			customer_id       = EXCLUDED.customer_id,
			balance           = EXCLUDED.balance,
			payment_method_id = EXCLUDED.payment_method_id,
			payment_gateway   = EXCLUDED.payment_gateway,
			updated_at        = EXCLUDED.updated_at`,
		o.ID, o.CustomerID, balance, nullText(o.PaymentMethodID), nullText(o.PaymentGateway), nullTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}
