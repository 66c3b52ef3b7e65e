// Package services – ContactService
//
// This file implements ContactService, the application-level component that
// owns the two-phase contact verification flow. Submissions mint a one-time
// 6-digit code, park the payload in the pending store under the normalized
// email, and dispatch the code by email. Verification claims the pending
// entry atomically, commits the durable Contact, and only then discards the
// transient state, so a failed commit never strands the submitter.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// no email addresses (PII stays out of telemetry).
package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	netmail "net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/go-catalog-backend/internal/domain"
	"github.com/go-catalog-backend/internal/mail"
	"github.com/go-catalog-backend/internal/repo"
	"github.com/go-catalog-backend/internal/verification"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const codeLength = 6

// ContactService coordinates code issuance, pending state, and promotion of
// verified submissions into durable Contact rows.
type ContactService struct {
	DB      *gorm.DB
	Pending *verification.Store
	Mailer  mail.Mailer

	// Subject is the verification email subject line.
	Subject string

	// Test seams; defaulted by NewContactService.
	randInt func(n int) int
	now     func() time.Time
}

// NewContactService constructs a ContactService with the default clock and
// random source.
func NewContactService(db *gorm.DB, pending *verification.Store, mailer mail.Mailer, subject string) *ContactService {
	return &ContactService{
		DB:      db,
		Pending: pending,
		Mailer:  mailer,
		Subject: subject,
		randInt: rand.IntN,
		now:     time.Now,
	}
}

// RequestVerification validates the submission, issues a fresh code for the
// normalized email (unconditionally replacing any prior pending entry and
// its code), and emails the code to the submitter.
//
// The pending entry is written before dispatch and is NOT rolled back when
// dispatch fails: the slot stays occupied (harmlessly, since the code is
// undeliverable) until the TTL elapses or the user resubmits, which
// overwrites it. Delivery failures surface as ErrDeliveryFailed.
//
// The generated code never appears in the return value; it travels only
// through the email channel.
func (s *ContactService) RequestVerification(ctx context.Context, username, email, comment string) error {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "RequestVerification")
	defer span.End()

	username = strings.TrimSpace(username)
	comment = strings.TrimSpace(comment)
	email = verification.NormalizeEmail(email)

	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if comment == "" {
		return fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}
	if !validEmail(email) {
		return fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}

	code := s.generateCode()
	s.Pending.Put(email, code, username, comment)

	text, html, err := mail.RenderVerification(mail.VerificationData{
		Code:        code,
		CurrentYear: s.now().Year(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	// Dispatch happens after the store write and outside any store lock.
	if err := s.Mailer.Send(ctx, email, s.Subject, text, html); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// ConfirmVerification checks the presented code against the pending entry
// for the normalized email and, on success, commits a durable Contact and
// discards the pending state.
//
// Ordering is claim, then create, then delete: the claim serializes
// concurrent attempts so at most one creates a Contact, and the pending entry
// is only removed after the durable write succeeds. If the write fails, the
// claim is released and the raw DB error is returned; the entry remains
// verifiable.
//
// Every unsuccessful check (absent, expired, mismatched, or lost race)
// returns ErrVerificationFailed with the internal cause wrapped for logging.
// A mismatch leaves the entry in place so the submitter may retry until the
// TTL elapses.
func (s *ContactService) ConfirmVerification(ctx context.Context, email, code string) (*domain.Contact, error) {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "ConfirmVerification")
	defer span.End()

	email = verification.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	if !validEmail(email) {
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}
	if !validCode(code) {
		return nil, fmt.Errorf("%w: verification code must be %d digits", ErrInvalidInput, codeLength)
	}

	entry, err := s.Pending.Claim(email, code)
	if err != nil {
		span.SetAttributes(attribute.Bool("verification.claimed", false))
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	span.SetAttributes(attribute.Bool("verification.claimed", true))

	contact, err := repo.CreateContact(ctx, s.DB, email, entry.Username, entry.Comment)
	if err != nil {
		// Keep the pending entry retryable; the durable write is the step
		// that failed, not the code check.
		s.Pending.Release(email)
		return nil, err
	}

	s.Pending.Delete(email)
	return contact, nil
}

// generateCode returns a uniformly distributed 6-digit decimal code in
// [100000, 999999]. math/rand/v2 is seeded from OS entropy, which keeps the
// sequence unpredictable enough for short-lived, single-use codes without
// reaching for crypto/rand.
func (s *ContactService) generateCode() string {
	return fmt.Sprintf("%06d", 100000+s.randInt(900000))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := netmail.ParseAddress(email)
	// Reject the "Name <addr>" form; the payload field is a bare address.
	return err == nil && addr.Address == email
}

func validCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// WithClock overrides the service clock. Intended for tests.
func (s *ContactService) WithClock(now func() time.Time) *ContactService {
	s.now = now
	return s
}

// WithRand overrides the random source used for code generation.
// Intended for tests.
func (s *ContactService) WithRand(randInt func(n int) int) *ContactService {
	s.randInt = randInt
	return s
}
