package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kevin07696/payway-gateway/internal/adapters/payway"
	"github.com/kevin07696/payway-gateway/internal/config"
	"github.com/kevin07696/payway-gateway/internal/domain"
	"github.com/kevin07696/payway-gateway/internal/domain/ports"
	svcports "github.com/kevin07696/payway-gateway/internal/services/ports"
	"github.com/kevin07696/payway-gateway/pkg/observability"
)

// transactionTypePayment is the PayWay transactionType for a charge
const transactionTypePayment = "payment"

// gatewayService implements the GatewayService port
type gatewayService struct {
	cfg      config.GatewayConfig
	client   ports.PaymentGatewayClient
	payments ports.PaymentRepository
	methods  ports.PaymentMethodRepository
	orders   ports.OrderRepository
	clock    ports.Clock
	logger   ports.Logger
}

// NewGatewayService creates a new PayWay gateway service
func NewGatewayService(
	cfg config.GatewayConfig,
	client ports.PaymentGatewayClient,
	payments ports.PaymentRepository,
	methods ports.PaymentMethodRepository,
	orders ports.OrderRepository,
	clock ports.Clock,
	logger ports.Logger,
) svcports.GatewayService {
	return &gatewayService{
		cfg:      cfg,
		client:   client,
		payments: payments,
		methods:  methods,
		orders:   orders,
		clock:    clock,
		logger:   logger,
	}
}

// CreatePayment submits a new payment to PayWay
func (s *gatewayService) CreatePayment(ctx context.Context, req *svcports.CreatePaymentRequest) (*domain.Payment, error) {
	if req == nil || req.Payment == nil {
		return nil, domain.NewInvalidArgument("payment is required")
	}
	payment := req.Payment

	if !payment.IsNew() {
		return nil, domain.NewInvalidArgument(fmt.Sprintf("payment must be in state new, got %s", payment.State)).
			WithDetail("payment_id", payment.ID)
	}
	if payment.PaymentMethodID == "" {
		return nil, domain.NewInvalidArgument("payment has no payment method").
			WithDetail("payment_id", payment.ID)
	}

	method, err := s.methods.Get(ctx, payment.PaymentMethodID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewInvalidArgument("payment method does not exist").
				WithDetail("payment_id", payment.ID).
				WithDetail("payment_method_id", payment.PaymentMethodID)
		}
		return nil, domain.WrapError(domain.ErrorCodeInternal, "failed to load payment method", err)
	}

	order, err := s.orders.Get(ctx, payment.OrderID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewInvalidArgument("payment has no order").
				WithDetail("payment_id", payment.ID).
				WithDetail("order_id", payment.OrderID)
		}
		return nil, domain.WrapError(domain.ErrorCodeInternal, "failed to load order", err)
	}

	start := time.Now()
	amountCents := payment.PrincipalAmount().Shift(2).IntPart()
	record := func(outcome string, category payway.DeclineCategory) {
		observability.RecordPaymentAttempt(s.cfg.MerchantID, outcome, string(category), amountCents, payment.Currency, time.Since(start).Seconds())
	}

	if method.IsExpired(s.clock.Now()) {
		s.DeletePayment(ctx, payment, order)
		s.logger.Warn("Payment method expired",
			ports.String("payment_id", payment.ID),
			ports.String("payment_method_id", method.ID),
			ports.Int64("expires_at", method.ExpiresAt),
		)
		record(observability.OutcomeExpired, payway.CategoryExpiredCard)
		return nil, domain.NewHardDecline(domain.MsgPaymentMethodExpired, nil).
			WithDetail("payment_method_id", method.ID)
	}

	// Only one submission may reach PayWay per payment
	if err := s.payments.Claim(ctx, payment.ID); err != nil {
		if domain.IsInvalidArgument(err) || domain.IsNotFound(err) {
			s.logger.Warn("Payment not claimable",
				ports.String("payment_id", payment.ID),
				ports.Err(err),
			)
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrorCodeInternal, "failed to claim payment", err)
	}

	params := transactionParams(payment, method, order, req.CustomerIP)

	s.logger.Info("Submitting payment to PayWay",
		ports.String("payment_id", payment.ID),
		ports.String("order_id", order.ID),
		ports.String("principal_amount", params["principalAmount"]),
		ports.Bool("capture", req.Capture),
		ports.Bool("reusable", method.Reusable),
	)

	resp, err := s.client.SubmitRequest(ctx, http.MethodPost, payway.PathTransactions, params)
	if err != nil {
		if domain.IsConfigurationError(err) {
			s.logger.Error("PayWay is misconfigured", ports.Err(err))
			// Nothing was sent, so the payment may be retried
			if relErr := s.payments.Release(ctx, payment.ID); relErr != nil {
				s.logger.Error("Failed to release payment",
					ports.String("payment_id", payment.ID),
					ports.Err(relErr),
				)
			}
			return nil, err
		}
		s.DeletePayment(ctx, payment, order)
		s.logger.Warn("PayWay payment request failed",
			ports.String("payment_id", payment.ID),
			ports.String("order_id", order.ID),
			ports.Err(err),
		)
		record(observability.OutcomeFailed, payway.CategoryUnknown)
		return nil, domain.NewHardDecline(domain.MsgPaymentRequestFailed, err)
	}

	txn, err := payway.ParseTransaction(resp.Body)
	if err != nil {
		s.DeletePayment(ctx, payment, order)
		s.logger.Warn("PayWay payment response unreadable",
			ports.String("payment_id", payment.ID),
			ports.Int("status", resp.StatusCode),
			ports.String("detail", payway.ParseError(resp.Body)),
			ports.Err(err),
		)
		record(observability.OutcomeFailed, payway.CategoryUnknown)
		return nil, domain.NewHardDecline(domain.MsgPaymentRequestFailed, err)
	}

	if !txn.IsApproved() {
		s.DeletePayment(ctx, payment, order)
		info := payway.LookupResponseCode(txn.ResponseCode)
		s.logger.Error(fmt.Sprintf("%s: %s", txn.ResponseCode, txn.ResponseText),
			ports.String("payment_id", payment.ID),
			ports.String("order_id", order.ID),
			ports.String("status", txn.Status),
			ports.String("transaction_id", txn.TransactionID.String()),
			ports.String("decline_category", string(info.Category)),
		)
		record(observability.OutcomeDeclined, info.Category)
		return nil, domain.NewHardDecline(domain.MsgPaymentDeclined, nil).
			WithDetail("response_code", txn.ResponseCode).
			WithDetail("response_text", txn.ResponseText)
	}

	payment.Approve(txn.TransactionID.String(), req.Capture, s.clock.Now())
	saveErr := s.payments.Save(ctx, payment)

	if !method.Reusable {
		if err := s.methods.Delete(ctx, method.ID); err != nil {
			s.logger.Error("Failed to delete single-use payment method",
				ports.String("payment_method_id", method.ID),
				ports.Err(err),
			)
			observability.RecordCleanupFailure("payment_method")
		}
	}

	if saveErr != nil {
		s.logger.Error("Failed to save approved payment",
			ports.String("payment_id", payment.ID),
			ports.String("remote_transaction_id", payment.RemoteTransactionID),
			ports.Err(saveErr),
		)
		return nil, domain.WrapError(domain.ErrorCodeInternal, "failed to save approved payment", saveErr).
			WithDetail("remote_transaction_id", payment.RemoteTransactionID)
	}

	outcome := observability.OutcomeAuthorized
	if req.Capture {
		outcome = observability.OutcomeCaptured
	}
	record(outcome, payway.CategoryApproved)

	s.logger.Info("Payment approved",
		ports.String("payment_id", payment.ID),
		ports.String("remote_transaction_id", payment.RemoteTransactionID),
		ports.String("state", string(payment.State)),
	)

	return payment, nil
}

// transactionParams builds the POST /transactions form
func transactionParams(payment *domain.Payment, method *domain.PaymentMethod, order *domain.Order, customerIP string) map[string]string {
	customerNumber := domain.AnonymousCustomer
	if !method.IsAnonymous() {
		customerNumber = fmt.Sprintf("%d", method.OwnerID)
	}

	params := map[string]string{
		"customerNumber":  customerNumber,
		"transactionType": transactionTypePayment,
		"principalAmount": payment.PrincipalAmount().StringFixed(2),
		"currency":        "aud",
		"orderNumber":     order.ID,
	}
	if customerIP != "" {
		params["customerIpAddress"] = customerIP
	}
	if !method.Reusable {
		params["singleUseTokenId"] = method.RemoteID
	}
	return params
}

// DeletePayment removes a failed payment and detaches it from its order
func (s *gatewayService) DeletePayment(ctx context.Context, payment *domain.Payment, order *domain.Order) {
	if payment != nil {
		if err := s.payments.Delete(ctx, payment.ID); err != nil {
			s.logger.Error("Failed to delete payment",
				ports.String("payment_id", payment.ID),
				ports.Err(err),
			)
			observability.RecordCleanupFailure("payment")
		}
	}

	if order == nil {
		return
	}
	order.DetachPayment()
	order.UpdatedAt = s.clock.Now()
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("Failed to detach payment from order",
			ports.String("order_id", order.ID),
			ports.Err(err),
		)
		observability.RecordCleanupFailure("order")
	}
}

// CreatePaymentMethod stores a PayWay token, optionally exchanging it for a customer
func (s *gatewayService) CreatePaymentMethod(ctx context.Context, method *domain.PaymentMethod, details svcports.PaymentDetails) (*domain.PaymentMethod, error) {
	if method == nil {
		return nil, domain.NewInvalidArgument("payment method is required")
	}
	if details.CreditCardToken == "" {
		return nil, domain.NewInvalidArgument("payment_credit_card_token is required")
	}

	if details.Customer {
		if err := s.createCustomer(ctx, method, details); err != nil {
			observability.RecordPaymentMethodCreated(s.cfg.MerchantID, true, "failed")
			return nil, err
		}
	} else {
		method.ExpiresAt = 0
		method.Reusable = false
		method.RemoteID = details.CreditCardToken
		method.CardType = details.Card.Type
		method.CardNumber = details.Card.Number
		method.CardExpMonth = details.Card.ExpMonth
		method.CardExpYear = details.Card.ExpYear
	}

	now := s.clock.Now()
	method.IsDefault = false
	if method.CreatedAt.IsZero() {
		method.CreatedAt = now
	}
	method.UpdatedAt = now

	if err := s.methods.Create(ctx, method); err != nil {
		observability.RecordPaymentMethodCreated(s.cfg.MerchantID, method.Reusable, "failed")
		if errors.Is(err, domain.ErrPaymentMethodExists) {
			s.logger.Warn("Payment method id already in use",
				ports.String("payment_method_id", method.ID),
			)
			return nil, err
		}
		s.logger.Error("Failed to save payment method",
			ports.String("payment_method_id", method.ID),
			ports.Err(err),
		)
		return nil, domain.WrapError(domain.ErrorCodeInternal, "failed to save payment method", err)
	}

	observability.RecordPaymentMethodCreated(s.cfg.MerchantID, method.Reusable, "created")
	s.logger.Info("Payment method created",
		ports.String("payment_method_id", method.ID),
		ports.String("label", method.GetDisplayName()),
		ports.Bool("reusable", method.Reusable),
		ports.String("token", details.CreditCardToken),
	)

	return method, nil
}

// createCustomer exchanges the single-use token for a reusable PayWay customer
func (s *gatewayService) createCustomer(ctx context.Context, method *domain.PaymentMethod, details svcports.PaymentDetails) error {
	resp, err := s.client.SubmitRequest(ctx, http.MethodPost, payway.PathCustomers, map[string]string{
		"singleUseTokenId": details.CreditCardToken,
		"merchantId":       s.cfg.MerchantID,
	})
	if err != nil {
		if domain.IsConfigurationError(err) {
			return err
		}
		s.logger.Error("PayWay customer request failed",
			ports.String("payment_method_id", method.ID),
			ports.Err(err),
		)
		return domain.NewPaymentGatewayError(domain.MsgAddPaymentMethodError, err)
	}

	if !resp.IsSuccess() {
		detail := payway.ParseError(resp.Body)
		s.logger.Error("PayWay rejected customer creation",
			ports.String("payment_method_id", method.ID),
			ports.Int("status", resp.StatusCode),
			ports.String("detail", detail),
		)
		return domain.NewPaymentGatewayError(domain.MsgAddPaymentMethodError,
			fmt.Errorf("PayWay returned status %d: %s", resp.StatusCode, detail))
	}

	customer, err := payway.ParseCustomer(resp.Body)
	if err != nil {
		s.logger.Error("PayWay customer response unreadable",
			ports.String("payment_method_id", method.ID),
			ports.Err(err),
		)
		return domain.NewPaymentGatewayError(domain.MsgAddPaymentMethodError, err)
	}

	card := customer.PaymentSetup.CreditCard
	month, monthErr := card.ExpiryDateMonth.Int()
	year, yearErr := card.ExpiryDateYear.Int()
	if monthErr != nil || yearErr != nil || month < 1 || month > 12 || year < 0 {
		err := fmt.Errorf("invalid card expiry %q/%q", card.ExpiryDateMonth, card.ExpiryDateYear)
		s.logger.Error("PayWay customer response has no usable expiry",
			ports.String("payment_method_id", method.ID),
			ports.Err(err),
		)
		return domain.NewPaymentGatewayError(domain.MsgAddPaymentMethodError, err)
	}

	method.ExpiresAt = domain.CardExpiry(year, month).Unix()
	method.Reusable = true
	method.RemoteID = customer.CustomerNumber.String()
	method.CardType = card.CardScheme
	method.CardNumber = card.CardNumber
	method.CardExpMonth = month
	method.CardExpYear = year
	return nil
}

// DeletePaymentMethod stops pending payments on the PayWay customer, removes it, then deletes the local record
func (s *gatewayService) DeletePaymentMethod(ctx context.Context, method *domain.PaymentMethod) error {
	if method == nil {
		return domain.NewInvalidArgument("payment method is required")
	}

	if method.Reusable && method.RemoteID != "" {
		remote := "deleted"
		if !s.remoteCall(ctx, method, http.MethodPatch, payway.PaymentSetupPath(method.RemoteID), map[string]string{"stopped": "true"}) {
			remote = "failed"
		}
		if !s.remoteCall(ctx, method, http.MethodDelete, payway.CustomerPath(method.RemoteID), nil) {
			remote = "failed"
		}
		observability.RecordPaymentMethodDeleted(s.cfg.MerchantID, remote)
	} else {
		observability.RecordPaymentMethodDeleted(s.cfg.MerchantID, "none")
	}

	if err := s.methods.Delete(ctx, method.ID); err != nil {
		return domain.WrapError(domain.ErrorCodeInternal, "failed to delete payment method", err).
			WithDetail("payment_method_id", method.ID)
	}

	s.logger.Info("Payment method deleted",
		ports.String("payment_method_id", method.ID),
		ports.Bool("reusable", method.Reusable),
	)
	return nil
}

// remoteCall performs a best-effort customer call and reports whether it succeeded
func (s *gatewayService) remoteCall(ctx context.Context, method *domain.PaymentMethod, httpMethod, path string, params map[string]string) bool {
	resp, err := s.client.SubmitRequest(ctx, httpMethod, path, params)
	if err != nil {
		s.logger.Error("PayWay customer call failed",
			ports.String("payment_method_id", method.ID),
			ports.String("method", httpMethod),
			ports.String("endpoint", path),
			ports.Err(err),
		)
		return false
	}
	if !resp.IsSuccess() {
		s.logger.Error("PayWay customer call rejected",
			ports.String("payment_method_id", method.ID),
			ports.String("method", httpMethod),
			ports.String("endpoint", path),
			ports.Int("status", resp.StatusCode),
			ports.String("detail", payway.ParseError(resp.Body)),
		)
		return false
	}
	return true
}

// PublishableKey returns the publishable key for the configured mode
func (s *gatewayService) PublishableKey() (string, error) {
	return s.cfg.PublishableKey()
}

// GetPayment loads a payment by id
func (s *gatewayService) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	if id == "" {
		return nil, domain.NewInvalidArgument("payment id is required")
	}
	return s.payments.Get(ctx, id)
}

// GetPaymentMethod loads a payment method by id
func (s *gatewayService) GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	if id == "" {
		return nil, domain.NewInvalidArgument("payment method id is required")
	}
	return s.methods.Get(ctx, id)
}
