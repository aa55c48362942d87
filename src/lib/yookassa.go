package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

const yookassaBaseURL = "https://api.yookassa.ru/v3"

type YooKassaClient struct {
	ShopID    string
	SecretKey string
	BaseURL   string
	Inner     *http.Client
}

var yookassaClient *YooKassaClient

func GetYooKassaClient() *YooKassaClient {
	if yookassaClient != nil {
		return yookassaClient
	}
	shopId := os.Getenv("YOOKASSA_SHOP_ID")
	secretKey := os.Getenv("YOOKASSA_SECRET_KEY")
	c := &YooKassaClient{
		ShopID:    shopId,
		SecretKey: secretKey,
		BaseURL:   yookassaBaseURL,
		Inner:     &http.Client{Timeout: 15 * time.Second},
	}
	yookassaClient = c
	return c
}

// NewYooKassaClient Replace gateway instance with custom client implementation
func NewYooKassaClient(c *YooKassaClient) *YooKassaClient {
	yookassaClient = c
	return c
}

type YooKassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type YooKassaConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type YooKassaPayment struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Paid         bool                  `json:"paid"`
	Amount       YooKassaAmount        `json:"amount"`
	Confirmation *YooKassaConfirmation `json:"confirmation,omitempty"`
	Description  string                `json:"description,omitempty"`
	Metadata     map[string]string     `json:"metadata,omitempty"`
}

type createPaymentRequest struct {
	Amount       YooKassaAmount       `json:"amount"`
	Capture      bool                 `json:"capture"`
	Confirmation YooKassaConfirmation `json:"confirmation"`
	Description  string               `json:"description"`
	Metadata     map[string]string    `json:"metadata"`
}

// CreatePayment opens a hosted-checkout payment at the gateway. Each call
// carries a fresh Idempotence-Key so a retried request is not double-charged.
func (c *YooKassaClient) CreatePayment(ctx context.Context, amount float64, description string, metadata map[string]string, returnURL string) (*YooKassaPayment, error) {
	body := createPaymentRequest{
		Amount: YooKassaAmount{
			Value:    fmt.Sprintf("%.2f", amount),
			Currency: "RUB",
		},
		Capture: true,
		Confirmation: YooKassaConfirmation{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
		Description: description,
		Metadata:    metadata,
	}
	payload, err := json.Marshal(&body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/payments", c.BaseURL), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.New().String())
	req.SetBasicAuth(c.ShopID, c.SecretKey)

	res, err := c.Inner.Do(req)
	if err != nil {
		log.Printf("[yookassa] Error creating payment: %s\n", err.Error())
		return nil, err
	}
	defer res.Body.Close()
	rbytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 300 {
		log.Printf("[yookassa] Payment creation failed with status %d: %s\n", res.StatusCode, string(rbytes))
		return nil, fmt.Errorf("payment creation failed with status %d", res.StatusCode)
	}
	var payment YooKassaPayment
	if err := json.Unmarshal(rbytes, &payment); err != nil {
		return nil, err
	}
	log.Printf("[yookassa] Payment created: %s\n", payment.ID)
	return &payment, nil
}

// GetPayment polls the gateway for the current state of a payment.
func (c *YooKassaClient) GetPayment(ctx context.Context, id string) (*YooKassaPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/payments/%s", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.ShopID, c.SecretKey)

	res, err := c.Inner.Do(req)
	if err != nil {
		log.Printf("[yookassa] Error checking payment %s: %s\n", id, err.Error())
		return nil, err
	}
	defer res.Body.Close()
	rbytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 300 {
		log.Printf("[yookassa] Payment check failed with status %d: %s\n", res.StatusCode, string(rbytes))
		return nil, fmt.Errorf("payment check failed with status %d", res.StatusCode)
	}
	var payment YooKassaPayment
	if err := json.Unmarshal(rbytes, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
