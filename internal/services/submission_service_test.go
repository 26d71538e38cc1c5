package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-certificate-backend/internal/domain"
)

// newServiceDB opens a fresh in-memory database with the submission schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Submission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSubmissionCreate_PersistsAndNormalizes(t *testing.T) {
	s := NewSubmissionService(newServiceDB(t))

	lat, lon := 48.8584, 2.2945
	sub, err := s.Create(context.Background(), SubmissionInput{
		Name:      "  Asha Rao  ",
		Email:     " asha@example.com ",
		Phone:     " 9876543210 ",
		Message:   "  hello  ",
		Latitude:  &lat,
		Longitude: &lon,
		City:      " Paris ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if sub.Name != "Asha Rao" || sub.Email != "asha@example.com" || sub.Phone != "9876543210" {
		t.Fatalf("expected trimmed fields, got %+v", sub)
	}
	if sub.City != "Paris" || sub.Message != "hello" {
		t.Fatalf("expected trimmed optional fields, got %+v", sub)
	}
	if sub.CreatedAt.IsZero() {
		t.Fatal("expected creation timestamp")
	}
	if sub.Sent || sub.CertificateKey != "" {
		t.Fatal("intake must not touch fulfillment state")
	}
}

func TestSubmissionCreate_Validation(t *testing.T) {
	s := NewSubmissionService(newServiceDB(t))
	ctx := context.Background()

	if _, err := s.Create(ctx, SubmissionInput{Name: "   "}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.Create(ctx, SubmissionInput{Name: strings.Repeat("x", 121)}); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if _, err := s.Create(ctx, SubmissionInput{Name: "a", Email: "not-an-email"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	badLat := 90.5
	if _, err := s.Create(ctx, SubmissionInput{Name: "a", Latitude: &badLat}); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation for latitude, got %v", err)
	}
	badLon := -180.5
	if _, err := s.Create(ctx, SubmissionInput{Name: "a", Longitude: &badLon}); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation for longitude, got %v", err)
	}
}

func TestSubmissionCreate_RequiresContact(t *testing.T) {
	db := newServiceDB(t)
	s := NewSubmissionService(db)
	ctx := context.Background()

	if _, err := s.Create(ctx, SubmissionInput{Name: "Lee"}); !errors.Is(err, ErrNoContact) {
		t.Fatalf("expected ErrNoContact, got %v", err)
	}
	// Whitespace-only contact fields count as absent.
	if _, err := s.Create(ctx, SubmissionInput{Name: "Lee", Email: "  ", Phone: " \t"}); !errors.Is(err, ErrNoContact) {
		t.Fatalf("expected ErrNoContact for blank contacts, got %v", err)
	}

	var n int64
	if err := db.Model(&domain.Submission{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected submissions must not be persisted, found %d rows", n)
	}

	// Either channel alone satisfies the rule.
	if _, err := s.Create(ctx, SubmissionInput{Name: "Lee", Phone: "5551234"}); err != nil {
		t.Fatalf("phone-only Create: %v", err)
	}
	if _, err := s.Create(ctx, SubmissionInput{Name: "Lee", Email: "lee@example.com"}); err != nil {
		t.Fatalf("email-only Create: %v", err)
	}
}

func TestSubmissionCreate_ClipsMessage(t *testing.T) {
	s := NewSubmissionService(newServiceDB(t))
	s.MaxMessageRunes = 10

	sub, err := s.Create(context.Background(), SubmissionInput{
		Name:    "a",
		Phone:   "5551234",
		Message: strings.Repeat("é", 25),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := utf8.RuneCountInString(sub.Message); got != 10 {
		t.Fatalf("expected message clipped to 10 runes, got %d", got)
	}
}

func TestSubmissionGet_NotFound(t *testing.T) {
	s := NewSubmissionService(newServiceDB(t))
	if _, err := s.Get(context.Background(), 999); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSubmissionListPage_DefaultsAndOrder(t *testing.T) {
	s := NewSubmissionService(newServiceDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, SubmissionInput{Name: fmt.Sprintf("p%d", i), Email: fmt.Sprintf("p%d@example.com", i)}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, total, err := s.ListPage(ctx, 0, -1)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 items, got total=%d len=%d", total, len(items))
	}
	// Newest first.
	if items[0].ID < items[1].ID || items[1].ID < items[2].ID {
		t.Fatalf("expected newest-first order, got ids %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestSubmissionListPage_Empty(t *testing.T) {
	s := NewSubmissionService(newServiceDB(t))
	items, total, err := s.ListPage(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty page, got total=%d len=%d", total, len(items))
	}
}
