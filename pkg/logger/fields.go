package logger

// Standard field names for consistent logging.
const (
	FieldService   = "service"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldUserID    = "user_id"
	FieldBotID     = "bot_id"
	FieldChatID    = "chat_id"
	FieldBookingID = "booking_id"
)
