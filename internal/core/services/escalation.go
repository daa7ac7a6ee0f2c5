package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/srgjo27/meeting_room/internal/platform/logger/sl"
)

const adminEmailKey = "admin_email"

func urgeKey(bookingID int64) string {
	return fmt.Sprintf("urge_%d", bookingID)
}

// Escalate mails the administrator about a booking still waiting for a
// decision. Only PENDING bookings can be escalated, and at most one mail
// per booking is sent per cooldown window.
//
// The throttle is only recorded after a successful send, so a failed
// send can be retried straight away. A cache failure before sending
// aborts the escalation.
func (s *BookingService) Escalate(ctx context.Context, bookingID int64) error {
	const op = "services.BookingService.Escalate"

	log := s.log.With(slog.String("op", op), slog.Int64("booking_id", bookingID))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if booking.Status != domain.BookingPending {
		log.Info("escalation refused", slog.String("status", string(booking.Status)))
		return fmt.Errorf("%w: booking %d is %s", domain.ErrNotPending, bookingID, booking.Status)
	}

	key := urgeKey(bookingID)

	deadline, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Error("throttle lookup failed, not escalating", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if found {
		return &domain.ThrottledError{BookingID: bookingID, Remaining: s.remaining(deadline)}
	}

	to, err := s.adminAddress(ctx)
	if err != nil {
		return err
	}

	n := ports.Notification{
		To:      to,
		Subject: s.cfg.EscalationSubject,
		Body:    fmt.Sprintf("Booking %d has been waiting for approval, please handle it as soon as possible.", bookingID),
		Key:     strconv.FormatInt(bookingID, 10),
	}

	if err := s.notifier.Send(ctx, n); err != nil {
		log.Error("failed to send escalation", sl.Err(err))
		return fmt.Errorf("%w: %w", domain.ErrNotifyFailed, err)
	}

	until := s.clock.Now().Add(s.cfg.EscalationCooldown)
	if err := s.cache.Set(ctx, key, strconv.FormatInt(until.UnixMilli(), 10), s.cfg.EscalationCooldown); err != nil {
		// The mail is already out; report success and leave the window unset.
		log.Error("escalation sent but throttle not recorded", sl.Err(err))
	}

	log.Info("booking escalated", slog.String("to", to))

	return nil
}

// remaining decodes the stored window end. An unreadable value counts as
// a full window.
func (s *BookingService) remaining(stored string) time.Duration {
	ms, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		return s.cfg.EscalationCooldown
	}

	left := time.UnixMilli(ms).Sub(s.clock.Now())
	if left < 0 {
		return 0
	}

	return left
}

func (s *BookingService) adminAddress(ctx context.Context) (string, error) {
	const op = "services.BookingService.adminAddress"

	addr, found, err := s.cache.Get(ctx, adminEmailKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if found && addr != "" {
		return addr, nil
	}

	admin, err := s.users.FindAdministrator(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrNoAdminConfigured
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if admin.Email == "" {
		return "", domain.ErrNoAdminConfigured
	}

	if err := s.cache.Set(ctx, adminEmailKey, admin.Email, s.cfg.AdminContactTTL); err != nil {
		s.log.Warn("failed to cache admin contact", slog.String("op", op), sl.Err(err))
	}

	return admin.Email, nil
}
