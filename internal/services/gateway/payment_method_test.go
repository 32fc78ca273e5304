package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kevin07696/payway-gateway/internal/config"
	"github.com/kevin07696/payway-gateway/internal/domain"
	svcports "github.com/kevin07696/payway-gateway/internal/services/ports"
	"github.com/kevin07696/payway-gateway/pkg/security"
	"github.com/kevin07696/payway-gateway/pkg/timeutil"
)

const customerBody = `{
	"customerNumber": "98",
	"paymentSetup": {
		"paymentMethod": "creditCard",
		"stopped": false,
		"creditCard": {
			"cardNumber": "424242...242",
			"expiryDateMonth": "05",
			"expiryDateYear": "26",
			"cardScheme": "visa"
		}
	}
}`

func TestCreatePaymentMethod_SingleUseToken(t *testing.T) {
	h := setupGatewayService(t, newFakeClient())
	ctx := context.Background()
	method := &domain.PaymentMethod{ID: "pm-1", OwnerID: 42, IsDefault: true}

	h.methods.On("Create", ctx, method).Return(nil)

	result, err := h.service.CreatePaymentMethod(ctx, method, svcports.PaymentDetails{
		CreditCardToken: "tok_abc",
		Card:            svcports.CardDetails{Type: "mastercard", Number: "512345...346", ExpMonth: 11, ExpYear: 27},
	})

	require.NoError(t, err)
	assert.Equal(t, "tok_abc", result.RemoteID)
	assert.False(t, result.Reusable)
	assert.Equal(t, int64(0), result.ExpiresAt)
	assert.False(t, result.IsDefault)
	assert.Equal(t, "mastercard", result.CardType)
	assert.Equal(t, "512345...346", result.CardNumber)
	assert.Equal(t, 11, result.CardExpMonth)
	assert.Equal(t, 27, result.CardExpYear)
	assert.Equal(t, testNow, result.CreatedAt)
	assert.Empty(t, h.client.Calls())
	h.assertExpectations(t)
}

func TestCreatePaymentMethod_MissingToken(t *testing.T) {
	for _, customer := range []bool{false, true} {
		h := setupGatewayService(t, newFakeClient(respond(http.StatusOK, customerBody)))

		_, err := h.service.CreatePaymentMethod(context.Background(), &domain.PaymentMethod{ID: "pm-1"}, svcports.PaymentDetails{Customer: customer})

		assert.True(t, domain.IsInvalidArgument(err))
		assert.Empty(t, h.client.Calls())
		h.methods.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestCreatePaymentMethod_ReusableCustomer(t *testing.T) {
	h := setupGatewayService(t, newFakeClient(respond(http.StatusOK, customerBody)))
	ctx := context.Background()
	method := &domain.PaymentMethod{ID: "pm-1", OwnerID: 42}

	h.methods.On("Create", ctx, method).Return(nil)

	result, err := h.service.CreatePaymentMethod(ctx, method, svcports.PaymentDetails{
		CreditCardToken: "tok_abc",
		Customer:        true,
	})

	require.NoError(t, err)
	assert.True(t, result.Reusable)
	assert.Equal(t, "98", result.RemoteID)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).Unix(), result.ExpiresAt)
	assert.Equal(t, "visa", result.CardType)
	assert.Equal(t, "424242...242", result.CardNumber)
	assert.Equal(t, 5, result.CardExpMonth)
	assert.Equal(t, 26, result.CardExpYear)
	assert.False(t, result.IsDefault)
	assert.Equal(t, "Visa with number 424242...242", result.GetDisplayName())

	calls := h.client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/customers", calls[0].Path)
	assert.Equal(t, map[string]string{"singleUseTokenId": "tok_abc", "merchantId": "TEST"}, calls[0].Params)
	h.assertExpectations(t)
}

func TestCreatePaymentMethod_CustomerFailures(t *testing.T) {
	tests := []struct {
		name   string
		result clientResult
		detail string
	}{
		{
			name:   "transport error",
			result: fail(domain.NewTransportError("failed to connect to PayWay", errors.New("connection refused"))),
		},
		{
			name:   "rejected token",
			result: respond(http.StatusUnprocessableEntity, `{"data":[{"fieldName":"singleUseTokenId","message":"Single use token has expired"}]}`),
			detail: "singleUseTokenId: Single use token has expired",
		},
		{
			name:   "unreadable body",
			result: respond(http.StatusOK, `not json`),
		},
		{
			name:   "missing expiry",
			result: respond(http.StatusOK, `{"customerNumber":"98","paymentSetup":{"creditCard":{"cardScheme":"visa"}}}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupGatewayService(t, newFakeClient(tt.result))

			_, err := h.service.CreatePaymentMethod(context.Background(), &domain.PaymentMethod{ID: "pm-1"}, svcports.PaymentDetails{
				CreditCardToken: "tok_abc",
				Customer:        true,
			})

			require.Error(t, err)
			assert.True(t, domain.IsPaymentGatewayError(err))
			assert.Equal(t, domain.MsgAddPaymentMethodError, domain.UserMessage(err))
			h.methods.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.NotEmpty(t, h.logger.ErrorCalls)

			if tt.detail != "" {
				assert.NotContains(t, domain.UserMessage(err), "expired")
				call, found := h.logger.FindError("PayWay rejected customer creation")
				require.True(t, found)
				assert.Equal(t, tt.detail, call.Field("detail"))
			}
		})
	}
}

func TestCreatePaymentMethod_ConfigurationError(t *testing.T) {
	h := setupGatewayService(t, newFakeClient(fail(domain.NewConfigurationError("unknown gateway mode"))))

	_, err := h.service.CreatePaymentMethod(context.Background(), &domain.PaymentMethod{ID: "pm-1"}, svcports.PaymentDetails{
		CreditCardToken: "tok_abc",
		Customer:        true,
	})

	assert.True(t, domain.IsConfigurationError(err))
}

func TestCreatePaymentMethod_SaveFailure(t *testing.T) {
	h := setupGatewayService(t, newFakeClient())
	ctx := context.Background()
	method := &domain.PaymentMethod{ID: "pm-1"}
	h.methods.On("Create", ctx, method).Return(errors.New("unique violation"))

	_, err := h.service.CreatePaymentMethod(ctx, method, svcports.PaymentDetails{CreditCardToken: "tok_abc"})

	assert.Equal(t, domain.ErrorCodeInternal, domain.GetErrorCode(err))
}

func TestCreatePaymentMethod_ExistingIDIsNotOverwritten(t *testing.T) {
	h := setupGatewayService(t, newFakeClient())
	ctx := context.Background()
	method := &domain.PaymentMethod{ID: "pm-1"}
	h.methods.On("Create", ctx, method).Return(domain.ErrPaymentMethodExists)

	_, err := h.service.CreatePaymentMethod(ctx, method, svcports.PaymentDetails{CreditCardToken: "tok_abc"})

	assert.ErrorIs(t, err, domain.ErrPaymentMethodExists)
	assert.True(t, domain.IsInvalidArgument(err))
	_, found := h.logger.FindWarn("already in use")
	assert.True(t, found)
	h.methods.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	h.assertExpectations(t)
}

func TestCreatePaymentMethod_TokenMaskedOnceInLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	methods := new(mockPaymentMethodRepository)
	service := NewGatewayService(testConfig(), newFakeClient(), new(mockPaymentRepository), methods,
		new(mockOrderRepository), timeutil.NewFixedClock(testNow), security.NewZapLogger(zap.New(core)))
	ctx := context.Background()
	method := &domain.PaymentMethod{ID: "pm-1"}
	methods.On("Create", ctx, method).Return(nil)

	_, err := service.CreatePaymentMethod(ctx, method, svcports.PaymentDetails{CreditCardToken: "tok_1234567890"})
	require.NoError(t, err)

	entries := logs.FilterMessage("Payment method created").All()
	require.Len(t, entries, 1)
	assert.Equal(t, security.MaskToken("tok_1234567890"), entries[0].ContextMap()["token"])
}

func TestDeletePaymentMethod_Reusable(t *testing.T) {
	h := setupGatewayService(t, newFakeClient(respond(http.StatusOK, `{}`), respond(http.StatusNoContent, "")))
	ctx := context.Background()
	method := reusableMethod()
	h.methods.On("Delete", ctx, "pm-1").Return(nil)

	err := h.service.DeletePaymentMethod(ctx, method)

	require.NoError(t, err)
	calls := h.client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPatch, calls[0].Method)
	assert.Equal(t, "/customers/98/payment-setup", calls[0].Path)
	assert.Equal(t, map[string]string{"stopped": "true"}, calls[0].Params)
	assert.Equal(t, http.MethodDelete, calls[1].Method)
	assert.Equal(t, "/customers/98", calls[1].Path)
	h.assertExpectations(t)
}

func TestDeletePaymentMethod_RemoteFailuresAreLogged(t *testing.T) {
	tests := []struct {
		name    string
		results []clientResult
	}{
		{
			name:    "transport errors",
			results: []clientResult{fail(errors.New("timeout")), fail(errors.New("timeout"))},
		},
		{
			name:    "stop rejected",
			results: []clientResult{respond(http.StatusNotFound, `{}`), respond(http.StatusNoContent, "")},
		},
		{
			name:    "delete rejected",
			results: []clientResult{respond(http.StatusOK, `{}`), respond(http.StatusConflict, `{"data":[{"message":"customer has pending payments"}]}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupGatewayService(t, newFakeClient(tt.results...))
			ctx := context.Background()
			h.methods.On("Delete", ctx, "pm-1").Return(nil)

			err := h.service.DeletePaymentMethod(ctx, reusableMethod())

			require.NoError(t, err)
			assert.Len(t, h.client.Calls(), 2)
			assert.NotEmpty(t, h.logger.ErrorCalls)
			h.assertExpectations(t)
		})
	}
}

func TestDeletePaymentMethod_SingleUseSkipsPayWay(t *testing.T) {
	h := setupGatewayService(t, newFakeClient())
	ctx := context.Background()
	h.methods.On("Delete", ctx, "pm-1").Return(nil)

	require.NoError(t, h.service.DeletePaymentMethod(ctx, singleUseMethod()))
	assert.Empty(t, h.client.Calls())
	h.assertExpectations(t)
}

func TestDeletePaymentMethod_LocalDeleteError(t *testing.T) {
	h := setupGatewayService(t, newFakeClient(respond(http.StatusOK, `{}`)))
	ctx := context.Background()
	h.methods.On("Delete", ctx, "pm-1").Return(errors.New("connection reset"))

	err := h.service.DeletePaymentMethod(ctx, reusableMethod())

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInternal, domain.GetErrorCode(err))
	assert.Len(t, h.client.Calls(), 2)
}

func TestPublishableKey(t *testing.T) {
	h := setupGatewayService(t, newFakeClient())

	key, err := h.service.PublishableKey()
	require.NoError(t, err)
	assert.Equal(t, "T_PUB", key)

	h.service.cfg.Mode = config.ModeLive
	key, err = h.service.PublishableKey()
	require.NoError(t, err)
	assert.Equal(t, "L_PUB", key)

	h.service.cfg.Mode = "bogus"
	_, err = h.service.PublishableKey()
	assert.True(t, domain.IsConfigurationError(err))
}

func TestGetPayment(t *testing.T) {
	h := setupGatewayService(t, newFakeClient())
	ctx := context.Background()
	h.payments.On("Get", ctx, "missing").Return(nil, domain.ErrPaymentNotFound)

	_, err := h.service.GetPayment(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))

	_, err = h.service.GetPayment(ctx, "")
	assert.True(t, domain.IsInvalidArgument(err))
	h.assertExpectations(t)
}
