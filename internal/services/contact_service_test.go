package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-catalog-backend/internal/domain"
	"github.com/go-catalog-backend/internal/verification"
)

// ---------- test helpers ----------

func newContactDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:contactsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

type sentMail struct {
	to, subject, text, html string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, text, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, text: text, html: html})
	return nil
}

func (f *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("no mail sent")
	}
	return f.sent[len(f.sent)-1]
}

// codeFromMail extracts the 6-digit code from the plain-text body.
func codeFromMail(t *testing.T, m sentMail) string {
	t.Helper()
	const prefix = "Your verification code is: "
	if !strings.HasPrefix(m.text, prefix) {
		t.Fatalf("unexpected mail text %q", m.text)
	}
	return strings.TrimSpace(strings.TrimPrefix(m.text, prefix))
}

func newContactSvc(t *testing.T, db *gorm.DB, mailer *fakeMailer, opts ...verification.Option) *ContactService {
	t.Helper()
	store := verification.NewStore(10*time.Minute, opts...)
	return NewContactService(db, store, mailer, "Email Verification Code")
}

// ---------- RequestVerification ----------

func TestContactService_Request_StoresPendingAndSendsCode(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	if err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi there"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}

	m := mailer.last(t)
	if m.to != "ann@example.com" || m.subject != "Email Verification Code" {
		t.Fatalf("unexpected envelope: to=%q subject=%q", m.to, m.subject)
	}
	code := codeFromMail(t, m)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	if !strings.Contains(m.html, code) {
		t.Fatalf("HTML body missing code %q", code)
	}

	entry, ok := s.Pending.Get("ann@example.com")
	if !ok {
		t.Fatalf("expected pending entry after request")
	}
	if entry.Code != code || entry.Username != "ann" || entry.Comment != "hi there" {
		t.Fatalf("pending entry mismatch: %#v (code %q)", entry, code)
	}
}

func TestContactService_Request_ValidationErrors(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	s := newContactSvc(t, db, &fakeMailer{})

	cases := []struct {
		name, username, email, comment string
	}{
		{"empty username", "  ", "a@b.com", "c"},
		{"empty comment", "u", "a@b.com", "  "},
		{"empty email", "u", "", "c"},
		{"malformed email", "u", "not-an-email", "c"},
		{"display-name form", "u", "Ann <ann@example.com>", "c"},
	}
	for _, tc := range cases {
		if err := s.RequestVerification(context.Background(), tc.username, tc.email, tc.comment); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
	if n := s.Pending.Len(); n != 0 {
		t.Fatalf("invalid requests must not store entries, got %d", n)
	}
}

func TestContactService_Request_NormalizesEmail(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	if err := s.RequestVerification(context.Background(), "ann", "  Ann@Example.COM ", "hello"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}
	if _, ok := s.Pending.Get("ann@example.com"); !ok {
		t.Fatalf("expected entry under normalized key")
	}
	if mailer.last(t).to != "ann@example.com" {
		t.Fatalf("mail should go to normalized address, got %q", mailer.last(t).to)
	}
}

func TestContactService_Request_DeliveryFailureKeepsPending(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{fail: errors.New("smtp: connection refused")}
	s := newContactSvc(t, db, mailer)

	err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi")
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	// The slot stays occupied until TTL or resubmission.
	if _, ok := s.Pending.Get("ann@example.com"); !ok {
		t.Fatalf("pending entry should survive a delivery failure")
	}
}

func TestContactService_Request_ResubmitReplacesCode(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	seq := []int{111111 - 100000, 222222 - 100000}
	i := 0
	s.WithRand(func(int) int { v := seq[i]; i++; return v })

	for n := 0; n < 2; n++ {
		if err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi"); err != nil {
			t.Fatalf("RequestVerification error: %v", err)
		}
	}

	// Old code is dead, new code wins.
	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", "111111"); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("stale code should fail, got %v", err)
	}
	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", "222222"); err != nil {
		t.Fatalf("fresh code should verify, got %v", err)
	}
}

func TestContactService_GenerateCode_RangeAndPadding(t *testing.T) {
	s := &ContactService{randInt: func(int) int { return 0 }}
	if got := s.generateCode(); got != "100000" {
		t.Fatalf("low bound: got %q", got)
	}
	s.randInt = func(int) int { return 899999 }
	if got := s.generateCode(); got != "999999" {
		t.Fatalf("high bound: got %q", got)
	}
}

// ---------- ConfirmVerification ----------

func TestContactService_Confirm_CreatesContactAndClearsPending(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	if err := s.RequestVerification(context.Background(), "ann", "Ann@Example.com", "love the shop"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}
	code := codeFromMail(t, mailer.last(t))

	// Case-insensitive on the verify side too.
	c, err := s.ConfirmVerification(context.Background(), "ANN@example.com", code)
	if err != nil {
		t.Fatalf("ConfirmVerification error: %v", err)
	}
	if c.Gmail != "ann@example.com" || c.Username != "ann" || c.Comment != "love the shop" || !c.IsVerified {
		t.Fatalf("unexpected contact %#v", c)
	}

	var stored domain.Contact
	if err := db.First(&stored, "id = ?", c.ID).Error; err != nil {
		t.Fatalf("load contact: %v", err)
	}

	if _, ok := s.Pending.Get("ann@example.com"); ok {
		t.Fatalf("pending entry should be gone after success")
	}
	// Code is single-use.
	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", code); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("replayed code should fail, got %v", err)
	}
}

func TestContactService_Confirm_WrongCodeLeavesEntryRetryable(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	if err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}
	code := codeFromMail(t, mailer.last(t))

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", wrong); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	// The right code still works afterwards.
	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", code); err != nil {
		t.Fatalf("retry with correct code failed: %v", err)
	}
}

func TestContactService_Confirm_UnknownEmailAndExpired(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}

	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	s := newContactSvc(t, db, mailer, verification.WithClock(clock))

	if _, err := s.ConfirmVerification(context.Background(), "ghost@example.com", "123456"); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("unknown email: expected ErrVerificationFailed, got %v", err)
	}

	if err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}
	code := codeFromMail(t, mailer.last(t))

	mu.Lock()
	now = now.Add(10*time.Minute + time.Second)
	mu.Unlock()

	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", code); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expired code: expected ErrVerificationFailed, got %v", err)
	}
	var total int64
	db.Model(&domain.Contact{}).Count(&total)
	if total != 0 {
		t.Fatalf("no contact should exist, got %d", total)
	}
}

func TestContactService_Confirm_InputValidation(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	s := newContactSvc(t, db, &fakeMailer{})

	if _, err := s.ConfirmVerification(context.Background(), "nope", "123456"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad email: expected ErrInvalidInput, got %v", err)
	}
	for _, code := range []string{"", "12345", "1234567", "12345a"} {
		if _, err := s.ConfirmVerification(context.Background(), "a@b.com", code); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("code %q: expected ErrInvalidInput, got %v", code, err)
		}
	}
}

func TestContactService_Confirm_DBFailureReleasesClaim(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	if err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}
	code := codeFromMail(t, mailer.last(t))

	// Force ONLY contact INSERTs to fail, then lift the fault.
	failing := true
	if err := db.Callback().Create().Before("gorm:create").Register("force_create_error_contacts", func(tx *gorm.DB) {
		if failing && tx.Statement != nil && strings.Contains(tx.Statement.Table, "contacts") {
			tx.AddError(errors.New("forced-create-error"))
		}
	}); err != nil {
		t.Fatalf("register create callback: %v", err)
	}

	_, err := s.ConfirmVerification(context.Background(), "ann@example.com", code)
	if err == nil || errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected raw DB error, got %v", err)
	}
	if _, ok := s.Pending.Get("ann@example.com"); !ok {
		t.Fatalf("pending entry should survive a failed durable write")
	}

	failing = false
	if _, err := s.ConfirmVerification(context.Background(), "ann@example.com", code); err != nil {
		t.Fatalf("retry after DB recovery failed: %v", err)
	}
}

func TestContactService_Confirm_ConcurrentExactlyOneWinner(t *testing.T) {
	db := newContactDB(t, &domain.Contact{})
	mailer := &fakeMailer{}
	s := newContactSvc(t, db, mailer)

	if err := s.RequestVerification(context.Background(), "ann", "ann@example.com", "hi"); err != nil {
		t.Fatalf("RequestVerification error: %v", err)
	}
	code := codeFromMail(t, mailer.last(t))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, errs[i] = s.ConfirmVerification(context.Background(), "ann@example.com", code)
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrVerificationFailed):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}

	var total int64
	if err := db.Model(&domain.Contact{}).Count(&total).Error; err != nil {
		t.Fatalf("count contacts: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly 1 contact row, got %d", total)
	}
}
