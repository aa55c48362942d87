package lib

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestCreatePayment(t *testing.T) {
	var gotBody []byte
	var gotIdempotenceKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop-123", user)
		assert.Equal(t, "sk-test", pass)
		gotIdempotenceKey = r.Header.Get("Idempotence-Key")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "yk-2d4f1a88",
			"status": "pending",
			"paid":   false,
			"confirmation": map[string]string{
				"type":             "redirect",
				"confirmation_url": "https://yookassa.ru/checkout/payments/yk-2d4f1a88",
			},
		})
	}))
	defer server.Close()

	client := &YooKassaClient{
		ShopID:    "shop-123",
		SecretKey: "sk-test",
		BaseURL:   server.URL,
		Inner:     &http.Client{Timeout: 5 * time.Second},
	}

	payment, err := client.CreatePayment(context.Background(), 1500, "Оплата: training", map[string]string{
		"participant_id": "p-1",
	}, "https://club.example/return")
	assert.Nil(t, err)
	assert.Equal(t, "yk-2d4f1a88", payment.ID)
	assert.Equal(t, "pending", payment.Status)
	assert.NotNil(t, payment.Confirmation)
	assert.Equal(t, "https://yookassa.ru/checkout/payments/yk-2d4f1a88", payment.Confirmation.ConfirmationURL)
	assert.NotEmpty(t, gotIdempotenceKey)

	sjson := string(gotBody)
	assert.Equal(t, "1500.00", gjson.Get(sjson, "amount.value").String())
	assert.Equal(t, "RUB", gjson.Get(sjson, "amount.currency").String())
	assert.True(t, gjson.Get(sjson, "capture").Bool())
	assert.Equal(t, "redirect", gjson.Get(sjson, "confirmation.type").String())
	assert.Equal(t, "https://club.example/return", gjson.Get(sjson, "confirmation.return_url").String())
	assert.Equal(t, "p-1", gjson.Get(sjson, "metadata.participant_id").String())
}

func TestGetPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/payments/yk-2d4f1a88", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "yk-2d4f1a88",
			"status": "succeeded",
			"paid":   true,
		})
	}))
	defer server.Close()

	client := &YooKassaClient{
		ShopID:    "shop-123",
		SecretKey: "sk-test",
		BaseURL:   server.URL,
		Inner:     &http.Client{Timeout: 5 * time.Second},
	}

	payment, err := client.GetPayment(context.Background(), "yk-2d4f1a88")
	assert.Nil(t, err)
	assert.Equal(t, "succeeded", payment.Status)
	assert.True(t, payment.Paid)
}

func TestGetPaymentGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := &YooKassaClient{
		BaseURL: server.URL,
		Inner:   &http.Client{Timeout: 5 * time.Second},
	}

	payment, err := client.GetPayment(context.Background(), "yk-2d4f1a88")
	assert.Nil(t, payment)
	assert.NotNil(t, err)
}
