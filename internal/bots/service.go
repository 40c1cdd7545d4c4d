package bots

import (
	"context"
	"fmt"
	"regexp"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

const (
	defaultQRFreeCount        = 500
	defaultQRPaidCount        = 500
	defaultRotationUnit       = "never"
	defaultTemplate           = "keys"
	defaultPrivacyConsentText = "Я согласен на обработку персональных данных"
)

var uniqueNumberPattern = regexp.MustCompile(`^\d{6}$`)

// ValidUniqueNumber reports whether s is an exactly-6-digit bot number.
func ValidUniqueNumber(s string) bool {
	return uniqueNumberPattern.MatchString(s)
}

// ValidationError blocks a submission before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CreateForm is the creation-wizard state. Zero value is not usable; start
// from NewCreateForm so the defaults match the wizard's.
type CreateForm struct {
	Name                  string
	Token                 string
	Description           string
	Logic                 string
	Template              string
	UniqueNumber          string
	QRFreeCount           int
	QRPaidCount           int
	QRRotationValue       int
	QRRotationUnit        string
	PaymentEnabled        bool
	PaymentURL            string
	OfferImageURL         string
	PrivacyConsentEnabled bool
	PrivacyConsentText    string
}

func NewCreateForm() *CreateForm {
	return &CreateForm{
		Template:           defaultTemplate,
		QRFreeCount:        defaultQRFreeCount,
		QRPaidCount:        defaultQRPaidCount,
		QRRotationUnit:     defaultRotationUnit,
		PrivacyConsentText: defaultPrivacyConsentText,
	}
}

// Reset returns the form to wizard defaults after a successful submission.
func (f *CreateForm) Reset() {
	*f = *NewCreateForm()
}

func (f *CreateForm) validate() error {
	if f.Name == "" || f.Token == "" || f.Description == "" || f.Logic == "" {
		return &ValidationError{Message: "Заполните все поля, включая описание и логику бота"}
	}
	if !uniqueNumberPattern.MatchString(f.UniqueNumber) {
		return &ValidationError{Message: "Укажите уникальный 6-значный номер бота"}
	}
	return nil
}

// Service implements the bot management workflow over the platform API.
type Service struct {
	Platform *platform.Client
	Log      *zap.Logger
}

func NewService(client *platform.Client, log *zap.Logger) *Service {
	return &Service{
		Platform: client,
		Log:      log,
	}
}

// LoadUserBots pings the engine sync function (fire-and-forget) and fetches
// the user's bots normalized into the console shape.
func (s *Service) LoadUserBots(ctx context.Context, userID int64) ([]Bot, error) {
	go func() {
		if err := s.Platform.SyncEngine(context.Background()); err != nil {
			s.Log.Debug("engine sync ping failed", zap.Error(err))
		}
	}()

	records, err := s.Platform.ListBots(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bots: %w", err)
	}

	list := make([]Bot, 0, len(records))
	for _, record := range records {
		list = append(list, fromRecord(record))
	}
	return list, nil
}

// CreateBot validates the wizard form and submits the creation payload.
// All validation runs before any network call; non-admin users are limited to
// a single bot (a UX guard mirrored server-side, not a security boundary).
func (s *Service) CreateBot(ctx context.Context, user *platform.User, form *CreateForm, existing []Bot) (*Bot, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}

	if user.Role != "admin" && len(existing) >= 1 {
		return nil, &ValidationError{Message: "Вы можете создать только одного бота"}
	}

	record, err := s.Platform.CreateBot(ctx, platform.CreateBotRequest{
		UserID:                user.ID,
		Name:                  form.Name,
		TelegramToken:         form.Token,
		Template:              form.Template,
		Description:           form.Description,
		Logic:                 form.Logic,
		UniqueNumber:          form.UniqueNumber,
		QRFreeCount:           form.QRFreeCount,
		QRPaidCount:           form.QRPaidCount,
		QRRotationValue:       form.QRRotationValue,
		QRRotationUnit:        form.QRRotationUnit,
		PaymentEnabled:        form.PaymentEnabled,
		PaymentURL:            form.PaymentURL,
		OfferImageURL:         form.OfferImageURL,
		PrivacyConsentEnabled: form.PrivacyConsentEnabled,
		PrivacyConsentText:    form.PrivacyConsentText,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	form.Reset()
	bot := fromRecord(*record)
	s.Log.Info("bot created",
		zap.Int64("bot_id", bot.ID),
		zap.Int64("user_id", user.ID),
		zap.String("template", bot.Template))
	return &bot, nil
}

// DeleteBot removes a bot. Confirmation is the surface's job; the caller is
// expected to reload the list afterwards either way.
func (s *Service) DeleteBot(ctx context.Context, botID int64) error {
	if err := s.Platform.DeleteBot(ctx, botID); err != nil {
		return fmt.Errorf("failed to delete bot: %w", err)
	}
	s.Log.Info("bot deleted", zap.Int64("bot_id", botID))
	return nil
}

// ToggleStatus flips a bot between active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, botID int64, currentStatus string) (string, error) {
	newStatus := "active"
	if currentStatus == "active" {
		newStatus = "inactive"
	}

	_, err := s.Platform.UpdateBot(ctx, map[string]interface{}{
		"bot_id": botID,
		"status": newStatus,
	})
	if err != nil {
		return "", fmt.Errorf("failed to change bot status: %w", err)
	}
	return newStatus, nil
}

// CombinedStats joins per-bot stats with the bot's user list.
type CombinedStats struct {
	Stats platform.BotStats
	Users []platform.BotUser
}

// Stats fetches stats and the user list concurrently. A failed users fetch
// degrades to an empty list; a failed stats fetch fails the whole call.
func (s *Service) Stats(ctx context.Context, botID int64) (*CombinedStats, error) {
	type statsResult struct {
		stats *platform.BotStats
		err   error
	}
	type usersResult struct {
		users []platform.BotUser
		err   error
	}

	statsCh := make(chan statsResult, 1)
	usersCh := make(chan usersResult, 1)

	go func() {
		stats, err := s.Platform.BotStats(ctx, botID)
		statsCh <- statsResult{stats: stats, err: err}
	}()
	go func() {
		users, err := s.Platform.BotUsers(ctx, botID)
		usersCh <- usersResult{users: users, err: err}
	}()

	st := <-statsCh
	us := <-usersCh

	if st.err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", st.err)
	}
	if us.err != nil {
		s.Log.Warn("failed to load bot users", zap.Int64("bot_id", botID), zap.Error(us.err))
		us.users = []platform.BotUser{}
	}

	return &CombinedStats{Stats: *st.stats, Users: us.users}, nil
}

// RestartEngine restarts the shared bot engine. Admin only; the surface asks
// for confirmation first.
func (s *Service) RestartEngine(ctx context.Context, adminID int64) (string, error) {
	message, err := s.Platform.RestartEngine(ctx, adminID)
	if err != nil {
		return "", fmt.Errorf("failed to restart engine: %w", err)
	}
	s.Log.Info("bot engine restarted", zap.Int64("user_id", adminID))
	return message, nil
}
