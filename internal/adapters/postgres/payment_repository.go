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

const paymentColumns = `id, order_id, payment_method_id, state, amount, currency, remote_transaction_id,
	authorized_at, captured_at, created_at, updated_at`

// PaymentRepository implements ports.PaymentRepository
type PaymentRepository struct {
	db DBTX
}

var _ ports.PaymentRepository = (*PaymentRepository)(nil)

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Get loads a payment by id
func (r *PaymentRepository) Get(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)

	var (
		p                   domain.Payment
		methodID, remoteID  pgtype.Text
		amount              pgtype.Numeric
		state               string
		authorized, capture pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.OrderID, &methodID, &state, &amount, &p.Currency, &remoteID,
		&authorized, &capture, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	p.Amount, err = pgNumericToDecimal(amount)
	if err != nil {
		return nil, err
	}
	p.PaymentMethodID = methodID.String
	p.RemoteTransactionID = remoteID.String
	p.State = domain.PaymentState(state)
	p.AuthorizedAt = timePtr(authorized)
	p.CapturedAt = timePtr(capture)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// Save inserts or updates a payment
func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	amount, err := decimalToNumeric(p.Amount)
	if err != nil {
		return err
	}
	currency := p.Currency
	if currency == "" {
		currency = domain.Currency
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($11, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			payment_method_id     = EXCLUDED.payment_method_id,
			state                 = EXCLUDED.state,
			amount                = EXCLUDED.amount,
			currency              = EXCLUDED.currency,
			remote_transaction_id = EXCLUDED.remote_transaction_id,
			authorized_at         = EXCLUDED.authorized_at,
			captured_at           = EXCLUDED.captured_at,
			updated_at            = EXCLUDED.updated_at`,
		p.ID, p.OrderID, nullText(p.PaymentMethodID), string(p.State), amount, currency,
		nullText(p.RemoteTransactionID), nullTimestamptz(p.AuthorizedAt), nullTimestamptz(p.CapturedAt),
		nullTime(p.CreatedAt), nullTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

// Delete removes a payment; deleting a missing payment is not an error
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// Claim moves a new payment to processing. The row is locked for the check so
// only one of several concurrent callers can claim it.
func (r *PaymentRepository) Claim(ctx context.Context, id string) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var state string
		err := tx.QueryRow(ctx, `SELECT state FROM payments WHERE id = $1 FOR UPDATE`, id).Scan(&state)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}
		if domain.PaymentState(state) != domain.PaymentStateNew {
			return domain.ErrPaymentInProgress
		}

		if _, err := tx.Exec(ctx, `UPDATE payments SET state = $2, updated_at = NOW() WHERE id = $1`,
			id, string(domain.PaymentStateProcessing)); err != nil {
			return fmt.Errorf("claim payment: %w", err)
		}
		return nil
	})
}

// Release returns a claimed payment to new when it was never sent to PayWay
func (r *PaymentRepository) Release(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE payments SET state = $2, updated_at = NOW() WHERE id = $1 AND state = $3`,
		id, string(domain.PaymentStateNew), string(domain.PaymentStateProcessing))
	if err != nil {
		return fmt.Errorf("release payment: %w", err)
	}
	return nil
}
