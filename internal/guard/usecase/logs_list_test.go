package usecase

import (
	"fmt"
	"testing"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
)

func TestLogList(t *testing.T) {
	// Arrange: 30 entries spread over two owners.
	f := newFixture(steamotp.New())
	for i := range 30 {
		f.repo.logs = append(f.repo.logs, entity.LogEntry{
			ID:      int64(i + 1),
			OwnerID: "owner-1",
			TS:      int64(1000 + i),
			Kind:    entity.LogKindCode,
			Name:    "Main",
			Trigger: "!steam",
			BuyerID: "buyer-1",
			Msg:     fmt.Sprintf("entry %d", i),
		})
	}
	f.repo.logs = append(f.repo.logs, entity.LogEntry{ID: 99, OwnerID: "owner-2", TS: 5000, Kind: entity.LogKindCode})

	t.Run("FirstPageNewestFirst", func(t *testing.T) {
		// Act
		out, err := f.uc.LogList(ownerCtx("owner-1"), LogListInput{Page: 0})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Entries) != int(entity.LogsPerPage) {
			t.Fatalf("expected %d entries, got %d", entity.LogsPerPage, len(out.Entries))
		}
		if out.Entries[0].TS != 1029 || out.Entries[len(out.Entries)-1].TS != 1018 {
			t.Fatalf("entries not newest first: first=%d last=%d", out.Entries[0].TS, out.Entries[len(out.Entries)-1].TS)
		}
		if out.TotalPages != 3 {
			t.Fatalf("total pages = %d, want 3", out.TotalPages)
		}
	})

	t.Run("LastPagePartial", func(t *testing.T) {
		// Act
		out, err := f.uc.LogList(ownerCtx("owner-1"), LogListInput{Page: 2})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Entries) != 6 {
			t.Fatalf("expected 6 entries on the last page, got %d", len(out.Entries))
		}
	})

	t.Run("PageBeyondEnd", func(t *testing.T) {
		// Act
		out, err := f.uc.LogList(ownerCtx("owner-1"), LogListInput{Page: 9})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Entries) != 0 {
			t.Fatalf("expected empty page, got %d entries", len(out.Entries))
		}
	})
}

func TestLogListEmpty(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())

	// Act
	out, err := f.uc.LogList(ownerCtx("owner-1"), LogListInput{Page: 0})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TotalPages != 1 {
		t.Fatalf("empty log must still report one page, got %d", out.TotalPages)
	}
}
