package notifier

import (
	"context"
	"fmt"
	netmail "net/mail"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/srgjo27/meeting_room/internal/platform/config"
)

const headerBookingKey = "X-Booking-Key"

type SMTPNotifier struct {
	cfg  config.SMTP
	from netmail.Address
	send func(ctx context.Context, msg *mail.Msg) error
	now  func() time.Time
}

// NewSMTPNotifier checks the server settings by building a client once.
// Each Send dials its own session.
func NewSMTPNotifier(cfg config.SMTP) (*SMTPNotifier, error) {
	if _, err := newMailClient(cfg); err != nil {
		return nil, fmt.Errorf("invalid smtp settings: %w", err)
	}

	from, err := netmail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp sender %q: %w", cfg.From, err)
	}
	from.Name = cfg.FromName

	s := &SMTPNotifier{
		cfg:  cfg,
		from: *from,
		now:  time.Now,
	}
	s.send = s.dialAndSend

	return s, nil
}

func newMailClient(cfg config.SMTP) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return mail.NewClient(cfg.Host, opts...)
}

func (s *SMTPNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := newMailClient(s.cfg)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, msg)
}

// Send delivers n as a plain-text mail. The SMTP session is bound to ctx,
// so a cancelled send is aborted rather than left running.
func (s *SMTPNotifier) Send(ctx context.Context, n ports.Notification) error {
	msg, err := s.buildMessage(n)
	if err != nil {
		return err
	}

	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", n.To, err)
	}

	return nil
}

func (s *SMTPNotifier) buildMessage(n ports.Notification) (*mail.Msg, error) {
	to, err := netmail.ParseAddress(n.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}

	msg := mail.NewMsg()

	if err := msg.FromFormat(s.from.Name, s.from.Address); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}

	if err := msg.To(to.String()); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}

	msg.Subject(n.Subject)
	msg.SetDateWithValue(s.now())
	if n.Key != "" {
		msg.SetGenHeader(headerBookingKey, n.Key)
	}
	msg.SetBodyString(mail.TypeTextPlain, n.Body)

	return msg, nil
}
