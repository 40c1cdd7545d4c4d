package platform

// User as stored by the platform users function.
type User struct {
	ID                    int64  `json:"id"`
	TelegramID            int64  `json:"telegram_id"`
	Username              string `json:"username"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	PhotoURL              string `json:"photo_url"`
	Role                  string `json:"role"`
	RegistrationCompleted bool   `json:"registration_completed"`
	BotsCount             int    `json:"bots_count"`
	CreatedAt             string `json:"created_at"`
}

type UpsertUserRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	PhotoURL   string `json:"photo_url"`
}

type CompleteRegistrationRequest struct {
	TelegramID int64  `json:"telegram_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Company    string `json:"company"`
}

// BotRecord is the row shape the bots function returns. Field names are the
// server's; normalization into the console shape happens in the bots service.
type BotRecord struct {
	ID                    int64             `json:"id"`
	UserID                int64             `json:"user_id"`
	Name                  string            `json:"name"`
	Status                string            `json:"status"`
	Template              string            `json:"template"`
	TelegramToken         string            `json:"telegram_token"`
	TotalUsers            int               `json:"total_users"`
	TotalMessages         int               `json:"total_messages"`
	ModerationStatus      string            `json:"moderation_status"`
	ModerationReason      string            `json:"moderation_reason"`
	PaymentURL            string            `json:"payment_url"`
	PaymentEnabled        bool              `json:"payment_enabled"`
	QRFreeCount           int               `json:"qr_free_count"`
	QRPaidCount           int               `json:"qr_paid_count"`
	QRRotationValue       int               `json:"qr_rotation_value"`
	QRRotationUnit        string            `json:"qr_rotation_unit"`
	ButtonTexts           map[string]string `json:"button_texts"`
	MessageTexts          map[string]string `json:"message_texts"`
	SecretShopText        string            `json:"secret_shop_text"`
	TBankTerminalKey      string            `json:"tbank_terminal_key"`
	TBankPassword         string            `json:"tbank_password"`
	VIPPrice              int               `json:"vip_price"`
	VIPPromoEnabled       bool              `json:"vip_promo_enabled"`
	VIPPromoStartDate     string            `json:"vip_promo_start_date"`
	VIPPromoEndDate       string            `json:"vip_promo_end_date"`
	VIPPurchaseMessage    string            `json:"vip_purchase_message"`
	OfferImageURL         string            `json:"offer_image_url"`
	PrivacyConsentEnabled bool              `json:"privacy_consent_enabled"`
	PrivacyConsentText    string            `json:"privacy_consent_text"`
	CreatedAt             string            `json:"created_at"`
	UpdatedAt             string            `json:"updated_at"`
}

type CreateBotRequest struct {
	UserID                int64  `json:"user_id"`
	Name                  string `json:"name"`
	TelegramToken         string `json:"telegram_token"`
	Template              string `json:"template"`
	Description           string `json:"description"`
	Logic                 string `json:"logic"`
	UniqueNumber          string `json:"unique_number"`
	QRFreeCount           int    `json:"qr_free_count"`
	QRPaidCount           int    `json:"qr_paid_count"`
	QRRotationValue       int    `json:"qr_rotation_value"`
	QRRotationUnit        string `json:"qr_rotation_unit"`
	PaymentEnabled        bool   `json:"payment_enabled"`
	PaymentURL            string `json:"payment_url"`
	OfferImageURL         string `json:"offer_image_url"`
	PrivacyConsentEnabled bool   `json:"privacy_consent_enabled"`
	PrivacyConsentText    string `json:"privacy_consent_text"`
}

// PendingBot is a moderation-queue row joined with its owner.
type PendingBot struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	TelegramToken  string `json:"telegram_token"`
	Template       string `json:"template"`
	BotDescription string `json:"bot_description"`
	BotLogic       string `json:"bot_logic"`
	OwnerName      string `json:"owner_name"`
	CreatedAt      string `json:"created_at"`
}

// ApprovedBot is an activation-queue row.
type ApprovedBot struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	TelegramToken  string `json:"telegram_token"`
	Template       string `json:"template"`
	BotDescription string `json:"bot_description"`
	BotLogic       string `json:"bot_logic"`
	Status         string `json:"status"`
	OwnerUsername  string `json:"owner_username"`
	CreatedAt      string `json:"created_at"`
}

type ModerateRequest struct {
	BotID   int64  `json:"bot_id"`
	Action  string `json:"action"`
	AdminID int64  `json:"admin_id"`
	Reason  string `json:"reason"`
}

type ModerateResult struct {
	Bot     BotRecord `json:"bot"`
	Message string    `json:"message"`
}

type ActivationRequest struct {
	BotID   int64  `json:"bot_id"`
	Action  string `json:"action"`
	AdminID int64  `json:"admin_id"`
}

type QRCodesCreated struct {
	Free    int    `json:"free"`
	Paid    int    `json:"paid"`
	Message string `json:"message"`
}

type QRGenerateResult struct {
	BotID          int64          `json:"bot_id"`
	BotName        string         `json:"bot_name"`
	QRCodesCreated QRCodesCreated `json:"qr_codes_created"`
}

type TelegramResult struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// WebhookSetupResult is the activation-time webhook call response. The embedded
// telegram_result carries Telegram's own verdict; ok=false means the webhook
// was not registered even though the HTTP call succeeded.
type WebhookSetupResult struct {
	Action         string         `json:"action"`
	BotID          int64          `json:"bot_id"`
	BotName        string         `json:"bot_name"`
	TelegramResult TelegramResult `json:"telegram_result"`
}

// SetWebhookResult is the manual per-bot webhook call response.
type SetWebhookResult struct {
	Success    bool   `json:"success"`
	WebhookURL string `json:"webhook_url"`
	Message    string `json:"message"`
}

// RotationInfo describes one bot's QR rotation schedule. time_until_rotation
// comes back as a Python timedelta string ("<days> days, HH:MM:SS").
type RotationInfo struct {
	BotID             int64  `json:"bot_id"`
	BotName           string `json:"bot_name"`
	RotationInterval  string `json:"rotation_interval"`
	LastRotation      string `json:"last_rotation"`
	NextRotation      string `json:"next_rotation"`
	TimeUntilRotation string `json:"time_until_rotation"`
	RotationDue       bool   `json:"rotation_due"`
}

type RotationResult struct {
	BotID            int64  `json:"bot_id"`
	BotName          string `json:"bot_name"`
	Action           string `json:"action"` // rotated or skipped
	Reason           string `json:"reason"`
	FreeQRReset      int    `json:"free_qr_reset"`
	RotationInterval string `json:"rotation_interval"`
}

type RotateAllResult struct {
	TotalProcessed int              `json:"total_processed"`
	Rotated        int              `json:"rotated"`
	Skipped        int              `json:"skipped"`
	Details        []RotationResult `json:"details"`
}

type QRCodeStats struct {
	Total          int `json:"total"`
	Used           int `json:"used"`
	Available      int `json:"available"`
	VIPTotal       int `json:"vip_total"`
	FreeTotal      int `json:"free_total"`
	FreeConfigured int `json:"free_configured"`
	VIPConfigured  int `json:"vip_configured"`
}

type BotStats struct {
	BotID          int64       `json:"bot_id"`
	BotName        string      `json:"bot_name"`
	TotalUsers     int         `json:"total_users"`
	TotalMessages  int         `json:"total_messages"`
	CreatedAt      string      `json:"created_at"`
	PaymentEnabled bool        `json:"payment_enabled"`
	PaymentURL     string      `json:"payment_url"`
	QRCodes        QRCodeStats `json:"qr_codes"`
}

type BotUser struct {
	ID             int64  `json:"id"`
	TelegramUserID int64  `json:"telegram_user_id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CreatedAt      string `json:"created_at"`
	QRCodesCount   int    `json:"qr_codes_count"`
	QRCodes        string `json:"qr_codes"`
}

type ShopCategory struct {
	ID          int64  `json:"id"`
	BotID       int64  `json:"bot_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

type ShopProduct struct {
	ID            int64   `json:"id"`
	BotID         int64   `json:"bot_id"`
	CategoryID    int64   `json:"category_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `json:"stock_quantity"`
	SortOrder     int     `json:"sort_order"`
	IsAvailable   bool    `json:"is_available"`
}

// WarehouseSchedule holds the working-hours template used to build slots.
type WarehouseSchedule struct {
	WorkStartTime       string `json:"work_start_time"`
	WorkEndTime         string `json:"work_end_time"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	WorkDays            string `json:"work_days"`
}

type Booking struct {
	ID               int64  `json:"id"`
	TelegramUserID   int64  `json:"telegram_user_id"`
	TelegramUsername string `json:"telegram_username"`
	BookingDate      string `json:"booking_date"`
	BookingTime      string `json:"booking_time"`
	UserPhone        string `json:"user_phone"`
	UserCompany      string `json:"user_company"`
	VehicleType      string `json:"vehicle_type"`
	CargoDescription string `json:"cargo_description"`
	Status           string `json:"status"`
}

type CreateBookingRequest struct {
	TelegramUserID   int64  `json:"telegram_user_id"`
	TelegramUsername string `json:"telegram_username"`
	BookingDate      string `json:"booking_date"`
	BookingTime      string `json:"booking_time"`
	UserPhone        string `json:"user_phone"`
	UserCompany      string `json:"user_company"`
	VehicleType      string `json:"vehicle_type"`
	CargoDescription string `json:"cargo_description"`
	BotID            int64  `json:"bot_id"`
}
