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

const paymentMethodColumns = `id, owner_id, remote_id, reusable, is_default, expires_at,
	card_type, card_number, card_exp_month, card_exp_year, created_at, updated_at`

// PaymentMethodRepository implements ports.PaymentMethodRepository
type PaymentMethodRepository struct {
	db DBTX
}

var _ ports.PaymentMethodRepository = (*PaymentMethodRepository)(nil)

// NewPaymentMethodRepository creates a new payment method repository
func NewPaymentMethodRepository(db DBTX) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

// Get loads a payment method by id
func (r *PaymentMethodRepository) Get(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id)

	var (
		pm                domain.PaymentMethod
		cardType, cardNum pgtype.Text
		expMonth, expYear pgtype.Int4
	)
	err := row.Scan(&pm.ID, &pm.OwnerID, &pm.RemoteID, &pm.Reusable, &pm.IsDefault, &pm.ExpiresAt,
		&cardType, &cardNum, &expMonth, &expYear, &pm.CreatedAt, &pm.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}

	pm.CardType = cardType.String
	pm.CardNumber = cardNum.String
	pm.CardExpMonth = int(expMonth.Int32)
	pm.CardExpYear = int(expYear.Int32)
	pm.CreatedAt = pm.CreatedAt.UTC()
	pm.UpdatedAt = pm.UpdatedAt.UTC()
	return &pm, nil
}

// Create inserts a new payment method and never overwrites an existing row
func (r *PaymentMethodRepository) Create(ctx context.Context, pm *domain.PaymentMethod) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO payment_methods (`+paymentMethodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()), COALESCE($12, NOW()))
		ON CONFLICT (id) DO NOTHING`,
		pm.ID, pm.OwnerID, pm.RemoteID, pm.Reusable, pm.IsDefault, pm.ExpiresAt,
		nullText(pm.CardType), nullText(pm.CardNumber), nullInt4(pm.CardExpMonth), nullInt4(pm.CardExpYear),
		nullTime(pm.CreatedAt), nullTime(pm.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentMethodExists
	}
	return nil
}

// Delete removes a payment method; payments keep their row with a NULL reference
func (r *PaymentMethodRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	return nil
}
