package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/infra/integration/whatsapp"
)

const WelcomeTemplate = "waitlist_welcome"

type messageSender interface {
	SendMessage(ctx context.Context, input whatsapp.SendMessageInput) (string, error)
}

// WhatsAppSender delivers the welcome template. Delivery problems are logged
// and swallowed: email is the primary channel.
type WhatsAppSender struct {
	client messageSender
	logger *zap.Logger
}

func NewWhatsAppSender(client messageSender, logger *zap.Logger) *WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppSender{client: client, logger: logger}
}

func (s *WhatsAppSender) SendWelcome(ctx context.Context, phone, name, referralLink string) error {
	if phone == "" || name == "" {
		s.logger.Debug("whatsapp welcome skipped, missing phone or name")
		return nil
	}

	_, err := s.client.SendMessage(ctx, whatsapp.SendMessageInput{
		PhoneNumber:  phone,
		TemplateName: WelcomeTemplate,
		Parameters:   []string{name, referralLink},
	})
	if err != nil {
		s.logger.Warn("whatsapp welcome failed", zap.Error(err))
	}
	return nil
}
