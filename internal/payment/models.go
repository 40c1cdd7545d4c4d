package payment

import "encoding/json"

// All amounts are in kopecks, the unit the gateway expects.

type ReceiptItem struct {
	Name          string `json:"Name"`
	Price         int64  `json:"Price"`
	Quantity      int    `json:"Quantity"`
	Amount        int64  `json:"Amount"`
	Tax           string `json:"Tax"`
	PaymentMethod string `json:"PaymentMethod"`
	PaymentObject string `json:"PaymentObject"`
}

type Receipt struct {
	Email    string        `json:"Email"`
	Phone    string        `json:"Phone"`
	Taxation string        `json:"Taxation"`
	Items    []ReceiptItem `json:"Items"`
}

// gatewayResponse covers Init, GetQr and GetState. PaymentId is a number in
// some responses and a string in others, hence json.Number.
type gatewayResponse struct {
	Success    bool        `json:"Success"`
	ErrorCode  string      `json:"ErrorCode"`
	Message    string      `json:"Message"`
	Details    string      `json:"Details"`
	PaymentID  json.Number `json:"PaymentId"`
	PaymentURL string      `json:"PaymentURL"`
	Status     string      `json:"Status"`
	Data       string      `json:"Data"`
}

// TestPaymentResult is what the settings dialog shows after a test Init.
type TestPaymentResult struct {
	PaymentID  string
	PaymentURL string
	Message    string
}

// SBPPayment is an СБП payment: the QR payload to render plus the payment id
// to poll with.
type SBPPayment struct {
	QRCode    string
	PaymentID string
}
