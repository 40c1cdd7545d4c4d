package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"telebot-admin/internal/config"
)

// Client talks to the platform's remote functions. Every function lives at
// BaseURL/<endpoint id>; all business logic is on the other side of that URL.
type Client struct {
	BaseURL    string
	Endpoints  config.Endpoints
	HTTPClient *http.Client
}

func NewClient(baseURL string, endpoints config.Endpoints) *Client {
	return &Client{
		BaseURL:   baseURL,
		Endpoints: endpoints,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx response from a platform function.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s (status: %d)", e.Message, e.StatusCode)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint, query string, body interface{}, headers map[string]string) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	reqURL := fmt.Sprintf("%s/%s", c.BaseURL, endpoint)
	if query != "" {
		reqURL += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := string(respBody)
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return respBody, nil
}

// ---- Users ----

func (c *Client) UpsertUser(ctx context.Context, req UpsertUserRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.Users, "", req, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.User, nil
}

func (c *Client) GetUser(ctx context.Context, telegramID int64) (*User, error) {
	query := "telegram_id=" + strconv.FormatInt(telegramID, 10)
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Users, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.User, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Users, "all=true", nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Users, nil
}

func (c *Client) CompleteRegistration(ctx context.Context, req CompleteRegistrationRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, c.Endpoints.Users, "", req, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.User, nil
}

// ---- Bots ----

func (c *Client) ListBots(ctx context.Context, userID int64) ([]BotRecord, error) {
	query := "user_id=" + strconv.FormatInt(userID, 10)
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Bots, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Bots []BotRecord `json:"bots"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Bots, nil
}

func (c *Client) CreateBot(ctx context.Context, req CreateBotRequest) (*BotRecord, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.Bots, "", req, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Bot BotRecord `json:"bot"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.Bot, nil
}

// UpdateBot sends a sparse settings payload. Only the keys present in the map
// are touched server-side, so callers control exactly what changes.
func (c *Client) UpdateBot(ctx context.Context, payload map[string]interface{}) (*BotRecord, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, c.Endpoints.Bots, "", payload, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Bot BotRecord `json:"bot"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.Bot, nil
}

func (c *Client) DeleteBot(ctx context.Context, botID int64) error {
	body := map[string]interface{}{"bot_id": botID}
	_, err := c.doRequest(ctx, http.MethodDelete, c.Endpoints.Bots, "", body, nil)
	return err
}

// ---- Moderation ----

func (c *Client) PendingBots(ctx context.Context) ([]PendingBot, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Moderation, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Bots []PendingBot `json:"bots"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Bots, nil
}

func (c *Client) Moderate(ctx context.Context, req ModerateRequest) (*ModerateResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.Moderation, "", req, nil)
	if err != nil {
		return nil, err
	}

	var result ModerateResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// ---- Activation ----

func (c *Client) ApprovedBots(ctx context.Context) ([]ApprovedBot, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Activation, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Bots []ApprovedBot `json:"bots"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Bots, nil
}

func (c *Client) SetActivation(ctx context.Context, req ActivationRequest) error {
	_, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.Activation, "", req, nil)
	return err
}

func (c *Client) GenerateQRCodes(ctx context.Context, botID int64) (*QRGenerateResult, error) {
	body := map[string]interface{}{"bot_id": botID}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.QRGenerate, "", body, nil)
	if err != nil {
		return nil, err
	}

	var result QRGenerateResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

func (c *Client) SetupWebhook(ctx context.Context, botID int64) (*WebhookSetupResult, error) {
	body := map[string]interface{}{"bot_id": botID, "action": "setup"}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.SetupWebhook, "", body, nil)
	if err != nil {
		return nil, err
	}

	var result WebhookSetupResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// SetBotWebhook switches a single bot to webhook delivery outside of the
// activation flow.
func (c *Client) SetBotWebhook(ctx context.Context, botID int64) (*SetWebhookResult, error) {
	body := map[string]interface{}{"bot_id": botID}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.BotWebhook, "", body, nil)
	if err != nil {
		return nil, err
	}

	var result SetWebhookResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// ---- QR rotation ----

func (c *Client) RotationSchedule(ctx context.Context) ([]RotationInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.QRRotation, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		TotalBots int            `json:"total_bots"`
		Bots      []RotationInfo `json:"bots"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Bots, nil
}

func (c *Client) RotateBot(ctx context.Context, botID int64) (*RotationResult, error) {
	body := map[string]interface{}{"bot_id": botID}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.QRRotation, "", body, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		RotationResult RotationResult `json:"rotation_result"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.RotationResult, nil
}

func (c *Client) RotateAll(ctx context.Context) (*RotateAllResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.QRRotation, "", map[string]interface{}{}, nil)
	if err != nil {
		return nil, err
	}

	var result RotateAllResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// ---- Stats ----

func (c *Client) BotStats(ctx context.Context, botID int64) (*BotStats, error) {
	query := "bot_id=" + strconv.FormatInt(botID, 10)
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.BotStats, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Stats BotStats `json:"stats"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.Stats, nil
}

func (c *Client) BotUsers(ctx context.Context, botID int64) ([]BotUser, error) {
	query := "bot_id=" + strconv.FormatInt(botID, 10)
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.BotUsers, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Users []BotUser `json:"users"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Users, nil
}

// ---- Engine ----

// SyncEngine pings the engine so freshly changed bots get picked up. Callers
// treat it as fire-and-forget.
func (c *Client) SyncEngine(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.EngineSync, "", map[string]interface{}{}, nil)
	return err
}

func (c *Client) RestartEngine(ctx context.Context, userID int64) (string, error) {
	headers := map[string]string{"X-User-Id": strconv.FormatInt(userID, 10)}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.EngineRestart, "", map[string]interface{}{}, headers)
	if err != nil {
		return "", err
	}

	var result struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Message, nil
}

// ---- Shop ----

func (c *Client) ShopCategories(ctx context.Context, botID int64) ([]ShopCategory, error) {
	query := fmt.Sprintf("bot_id=%d&type=categories", botID)
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Shop, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Categories []ShopCategory `json:"categories"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Categories, nil
}

func (c *Client) ShopProducts(ctx context.Context, botID, categoryID int64) ([]ShopProduct, error) {
	query := fmt.Sprintf("bot_id=%d", botID)
	if categoryID > 0 {
		query += fmt.Sprintf("&category_id=%d", categoryID)
	}
	resp, err := c.doRequest(ctx, http.MethodGet, c.Endpoints.Shop, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Products []ShopProduct `json:"products"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Products, nil
}

func (c *Client) CreateShopCategory(ctx context.Context, category ShopCategory) (*ShopCategory, error) {
	body := map[string]interface{}{
		"type":        "category",
		"bot_id":      category.BotID,
		"name":        category.Name,
		"description": category.Description,
		"emoji":       category.Emoji,
		"sort_order":  category.SortOrder,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.Shop, "", body, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Category ShopCategory `json:"category"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.Category, nil
}

func (c *Client) CreateShopProduct(ctx context.Context, product ShopProduct) (*ShopProduct, error) {
	body := map[string]interface{}{
		"type":           "product",
		"bot_id":         product.BotID,
		"category_id":    product.CategoryID,
		"name":           product.Name,
		"description":    product.Description,
		"price":          product.Price,
		"image_url":      product.ImageURL,
		"stock_quantity": product.StockQuantity,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, c.Endpoints.Shop, "", body, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Product ShopProduct `json:"product"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result.Product, nil
}

func (c *Client) UpdateShopProduct(ctx context.Context, payload map[string]interface{}) error {
	_, err := c.doRequest(ctx, http.MethodPut, c.Endpoints.Shop, "", payload, nil)
	return err
}

func (c *Client) DeleteShopProduct(ctx context.Context, productID int64) error {
	body := map[string]interface{}{"type": "product", "id": productID}
	_, err := c.doRequest(ctx, http.MethodDelete, c.Endpoints.Shop, "", body, nil)
	return err
}

// ---- Warehouse ----

// The warehouse function wraps everything in a {success, error} envelope.
type warehouseEnvelope struct {
	Success        bool              `json:"success"`
	Error          string            `json:"error"`
	Schedule       WarehouseSchedule `json:"schedule"`
	AvailableSlots []string          `json:"available_slots"`
	Bookings       []Booking         `json:"bookings"`
	BookingID      int64             `json:"booking_id"`
	Message        string            `json:"message"`
}

// ErrSlotTaken reports a booking conflict: the slot went to someone else
// between listing and submitting.
var ErrSlotTaken = errors.New("slot already taken")

func (c *Client) warehouseRequest(ctx context.Context, method, query string, body interface{}) (*warehouseEnvelope, error) {
	resp, err := c.doRequest(ctx, method, c.Endpoints.Warehouse, query, body, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	var envelope warehouseEnvelope
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("warehouse api error: %s", envelope.Error)
	}
	return &envelope, nil
}

func (c *Client) WarehouseSchedule(ctx context.Context, botID int64) (*WarehouseSchedule, error) {
	query := fmt.Sprintf("action=schedule&bot_id=%d", botID)
	envelope, err := c.warehouseRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	return &envelope.Schedule, nil
}

func (c *Client) AvailableSlots(ctx context.Context, date string, botID int64) ([]string, error) {
	query := fmt.Sprintf("action=available&date=%s&bot_id=%d", url.QueryEscape(date), botID)
	envelope, err := c.warehouseRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	return envelope.AvailableSlots, nil
}

func (c *Client) ListBookings(ctx context.Context, userID int64, dateFrom, status string) ([]Booking, error) {
	values := url.Values{}
	values.Set("action", "list")
	if userID > 0 {
		values.Set("user_id", strconv.FormatInt(userID, 10))
	}
	if dateFrom != "" {
		values.Set("date_from", dateFrom)
	}
	if status != "" {
		values.Set("status", status)
	}
	envelope, err := c.warehouseRequest(ctx, http.MethodGet, values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return envelope.Bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (int64, error) {
	envelope, err := c.warehouseRequest(ctx, http.MethodPost, "", req)
	if err != nil {
		return 0, err
	}
	return envelope.BookingID, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID int64, reason string) error {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(bookingID, 10))
	values.Set("reason", reason)
	_, err := c.warehouseRequest(ctx, http.MethodDelete, values.Encode(), nil)
	return err
}
