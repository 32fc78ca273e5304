package payway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionResponse_IsApproved(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{status: "approved", want: true},
		{status: "approved*", want: true},
		{status: "declined", want: false},
		{status: "pending", want: false},
		{status: "voided", want: false},
		{status: "Approved", want: false},
		{status: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			resp := &TransactionResponse{Status: tt.status}
			assert.Equal(t, tt.want, resp.IsApproved())
		})
	}
}

func TestParseTransaction(t *testing.T) {
	t.Run("string transaction id", func(t *testing.T) {
		resp, err := ParseTransaction(`{"status":"approved","transactionId":"T1"}`)
		require.NoError(t, err)
		assert.Equal(t, "T1", resp.TransactionID.String())
		assert.True(t, resp.IsApproved())
	})

	t.Run("numeric transaction id", func(t *testing.T) {
		resp, err := ParseTransaction(`{"status":"declined","transactionId":1179985404,"responseCode":"51","responseText":"Insufficient funds"}`)
		require.NoError(t, err)
		assert.Equal(t, "1179985404", resp.TransactionID.String())
		assert.Equal(t, "51", resp.ResponseCode)
		assert.Equal(t, "Insufficient funds", resp.ResponseText)
		assert.False(t, resp.IsApproved())
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseTransaction(`<html>bad gateway</html>`)
		assert.Error(t, err)
	})

	t.Run("missing status", func(t *testing.T) {
		_, err := ParseTransaction(`{"transactionId":"T1"}`)
		assert.Error(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := ParseTransaction("")
		assert.Error(t, err)
	})
}

func TestParseCustomer(t *testing.T) {
	body := `{
		"customerNumber": "98",
		"paymentSetup": {
			"paymentMethod": "creditCard",
			"stopped": false,
			"creditCard": {
				"cardNumber": "424242...242",
				"expiryDateMonth": "05",
				"expiryDateYear": "26",
				"cardScheme": "visa",
				"cardholderName": "Rebecca Turing"
			}
		}
	}`

	resp, err := ParseCustomer(body)
	require.NoError(t, err)
	assert.Equal(t, "98", resp.CustomerNumber.String())

	card := resp.PaymentSetup.CreditCard
	assert.Equal(t, "visa", card.CardScheme)
	assert.Equal(t, "424242...242", card.CardNumber)

	month, err := card.ExpiryDateMonth.Int()
	require.NoError(t, err)
	assert.Equal(t, 5, month)

	year, err := card.ExpiryDateYear.Int()
	require.NoError(t, err)
	assert.Equal(t, 26, year)
}

func TestParseCustomer_NumericFields(t *testing.T) {
	resp, err := ParseCustomer(`{"customerNumber":98,"paymentSetup":{"creditCard":{"expiryDateMonth":5,"expiryDateYear":26}}}`)
	require.NoError(t, err)
	assert.Equal(t, "98", resp.CustomerNumber.String())

	year, err := resp.PaymentSetup.CreditCard.ExpiryDateYear.Int()
	require.NoError(t, err)
	assert.Equal(t, 26, year)
}

func TestParseCustomer_Invalid(t *testing.T) {
	_, err := ParseCustomer(`{"paymentSetup":{}}`)
	assert.Error(t, err)

	_, err = ParseCustomer(`not json`)
	assert.Error(t, err)
}

func TestParseError(t *testing.T) {
	body := `{"data":[{"fieldName":"singleUseTokenId","message":"must not be blank","fieldValue":""}]}`
	assert.Equal(t, "singleUseTokenId: must not be blank", ParseError(body))
	assert.Equal(t, "plain text", ParseError("plain text"))
}
