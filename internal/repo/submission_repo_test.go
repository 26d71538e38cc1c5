package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-certificate-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:submission_repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateSubmission_AssignsIDAndTimestamp(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})

	s := &domain.Submission{Name: "Asha", Email: "a@x.com"}
	if err := CreateSubmission(context.Background(), db, s); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if s.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if s.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
	if s.Sent {
		t.Fatal("new submission must start with sent=false")
	}
}

func TestCreateSubmission_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	err := CreateSubmission(context.Background(), db, &domain.Submission{Name: "x"})
	if err == nil {
		t.Fatal("expected error creating without table")
	}
}

func TestGetSubmission_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})

	if _, err := GetSubmission(context.Background(), db, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSubmissionsPage_NewestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s := &domain.Submission{Name: fmt.Sprintf("p%d", i), Email: "p@x.com", CreatedAt: t1.Add(time.Duration(i) * time.Hour)}
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, err := ListSubmissionsPage(context.Background(), db, 0, 10)
	if err != nil {
		t.Fatalf("ListSubmissionsPage: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(items))
	}
	if items[0].Name != "p2" || items[2].Name != "p0" {
		t.Fatalf("expected creation-time-descending order, got %s..%s", items[0].Name, items[2].Name)
	}

	total, err := CountSubmissions(context.Background(), db)
	if err != nil || total != 3 {
		t.Fatalf("CountSubmissions = %d, %v", total, err)
	}
}

func TestUpdateArtifact_OverwritesKeyAndURL(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})

	s := &domain.Submission{Name: "Ravi", Phone: "9876543210"}
	if err := CreateSubmission(context.Background(), db, s); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := UpdateArtifact(context.Background(), db, s.ID, "certificates/1-a.pdf", "http://blob/1-a"); err != nil {
		t.Fatalf("first UpdateArtifact: %v", err)
	}
	if err := UpdateArtifact(context.Background(), db, s.ID, "certificates/1-b.pdf", "http://blob/1-b"); err != nil {
		t.Fatalf("second UpdateArtifact: %v", err)
	}

	got, err := GetSubmission(context.Background(), db, s.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CertificateKey != "certificates/1-b.pdf" || got.CertificateURL != "http://blob/1-b" {
		t.Fatalf("expected overwrite semantics, got %q %q", got.CertificateKey, got.CertificateURL)
	}
}

func TestUpdateArtifact_UnknownID(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})
	if err := UpdateArtifact(context.Background(), db, 99, "k", "u"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkSent_SetsSentAtExactlyOnce(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})

	s := &domain.Submission{Name: "Lee", Email: "l@x.com"}
	if err := CreateSubmission(context.Background(), db, s); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := MarkSent(context.Background(), db, s.ID, domain.ChannelEmail, first); err != nil {
		t.Fatalf("first MarkSent: %v", err)
	}

	// Re-send over a different channel: channel tag follows the latest
	// successful delivery, sent_at must not move.
	second := first.Add(48 * time.Hour)
	if err := MarkSent(context.Background(), db, s.ID, domain.ChannelSMS, second); err != nil {
		t.Fatalf("second MarkSent: %v", err)
	}

	got, err := GetSubmission(context.Background(), db, s.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.Sent {
		t.Fatal("expected sent=true")
	}
	if got.Channel != domain.ChannelSMS {
		t.Fatalf("expected channel=sms after re-send, got %q", got.Channel)
	}
	if got.SentAt == nil || !got.SentAt.Equal(first) {
		t.Fatalf("expected sent_at pinned to first delivery %v, got %v", first, got.SentAt)
	}
}

func TestMarkSent_UnknownID(t *testing.T) {
	db := newRepoDB(t, &domain.Submission{})
	if err := MarkSent(context.Background(), db, 7, domain.ChannelEmail, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
