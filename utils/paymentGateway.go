package utils

import (
	"aims/config"
	"aims/services"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// GatewayOrder is the order/session the gateway hands back for an online
// payment attempt. OrderID is the correlation key for reconciliation.
type GatewayOrder struct {
	OrderID   string  `json:"orderId"`
	ReceiptNo string  `json:"receiptNo"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
}

// GatewayClient talks to the payment gateway's order API. Every call is
// bounded by the configured timeout; a slow gateway surfaces as a retryable
// GatewayError, never a hang.
type GatewayClient struct {
	http *resty.Client
}

// NewGatewayClient builds a client from the global config.
func NewGatewayClient() *GatewayClient {
	client := resty.New().
		SetBaseURL(config.AppConfig.GatewayApiURL).
		SetTimeout(time.Duration(config.AppConfig.GatewayTimeoutS) * time.Second).
		SetBasicAuth(config.AppConfig.GatewayApiKey, config.AppConfig.GatewaySecretKey).
		SetHeader("Content-Type", "application/json")
	return &GatewayClient{http: client}
}

// CreateOrder opens a gateway order for an online collection. Amount is sent
// in paise, the gateway's smallest unit.
func (g *GatewayClient) CreateOrder(amount float64, currency string) (*GatewayOrder, error) {
	receiptNo := uuid.NewString()

	resp, err := g.http.R().
		SetBody(map[string]interface{}{
			"amount":   int64(amount * 100),
			"currency": currency,
			"receipt":  receiptNo,
		}).
		Post("orders")
	if err != nil {
		return nil, &services.GatewayError{Op: "create order", Timeout: isTimeout(err), Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &services.GatewayError{
			Op:  "create order",
			Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	var body struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &services.GatewayError{Op: "create order", Err: err}
	}

	return &GatewayOrder{
		OrderID:   body.ID,
		ReceiptNo: receiptNo,
		Amount:    amount,
		Currency:  body.Currency,
		Status:    body.Status,
	}, nil
}

// FetchOrderStatus queries the authoritative status for one order. Implements
// services.GatewayStatusFetcher for the reconciler.
func (g *GatewayClient) FetchOrderStatus(orderID string) (string, error) {
	if orderID == "" {
		return "", &services.GatewayError{Op: "fetch status", Err: fmt.Errorf("empty order id")}
	}

	resp, err := g.http.R().Get("orders/" + orderID)
	if err != nil {
		return "", &services.GatewayError{Op: "fetch status", OrderID: orderID, Timeout: isTimeout(err), Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", &services.GatewayError{
			Op:      "fetch status",
			OrderID: orderID,
			Err:     fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", &services.GatewayError{Op: "fetch status", OrderID: orderID, Err: err}
	}
	return body.Status, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
