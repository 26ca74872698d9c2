package usecase

import (
	"errors"
	"testing"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
)

func TestAccountList(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!Steam​", Secret: "aGVsbG93b3JsZHNoYXJlZHNlY3JldA==", Limit: int64p(5), PeriodHours: int64p(24)},
		{ID: 2, OwnerID: "owner-1", Name: "Alt", Trigger: "!alt", Secret: "short"},
		{ID: 3, OwnerID: "owner-2", Name: "Other", Trigger: "!other", Secret: testSecret},
	}

	// Act
	out, err := f.uc.AccountList(ownerCtx("owner-1"))

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(out.Accounts))
	}

	first := out.Accounts[0]
	if first.Trigger != "!steam" {
		t.Fatalf("trigger not normalized: %q", first.Trigger)
	}
	if first.LimitText != "5 за 24ч" {
		t.Fatalf("limit text = %q", first.LimitText)
	}
	if first.MaskedSecret != "aGVs…dA==" {
		t.Fatalf("masked secret = %q", first.MaskedSecret)
	}

	second := out.Accounts[1]
	if second.LimitText != "без ограничений" {
		t.Fatalf("limit text = %q", second.LimitText)
	}
	if second.MaskedSecret != "********" {
		t.Fatalf("short secret must be fully hidden, got %q", second.MaskedSecret)
	}
}

func TestAccountDelete(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 7, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret},
	}

	t.Run("Success", func(t *testing.T) {
		// Act
		out, err := f.uc.AccountDelete(ownerCtx("owner-1"), AccountDeleteInput{ID: 7})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Name != "Main" {
			t.Fatalf("deleted name = %q", out.Name)
		}
		if len(f.repo.accounts) != 0 {
			t.Fatalf("account not removed")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		// Act
		_, err := f.uc.AccountDelete(ownerCtx("owner-1"), AccountDeleteInput{ID: 7})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
			t.Fatalf("expected not-found error, got %v", err)
		}
	})

	t.Run("OtherOwner", func(t *testing.T) {
		// Arrange
		f.repo.accounts = []entity.Account{
			{ID: 8, OwnerID: "owner-2", Name: "Foreign", Trigger: "!x", Secret: testSecret},
		}

		// Act
		_, err := f.uc.AccountDelete(ownerCtx("owner-1"), AccountDeleteInput{ID: 8})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
			t.Fatalf("expected not-found error for foreign account, got %v", err)
		}
	})
}
