package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
)

func advance(t *testing.T, f *fixture, owner, text string) *RegistrationAdvanceOutput {
	t.Helper()
	out, err := f.uc.RegistrationAdvance(ownerCtx(owner), RegistrationAdvanceInput{Text: text})
	if err != nil {
		t.Fatalf("advance %q: unexpected error: %v", text, err)
	}
	return out
}

func TestRegistrationFullWalk(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())

	// Act
	start, err := f.uc.RegistrationStart(ownerCtx("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Step != "secret" || !strings.HasPrefix(start.Message, "Шаг 1/5") {
		t.Fatalf("unexpected start: %+v", start)
	}

	if out := advance(t, f, "owner-1", testSecret); out.Step != "name" {
		t.Fatalf("after secret, step = %q", out.Step)
	}
	if out := advance(t, f, "owner-1", "Main"); out.Step != "trigger" {
		t.Fatalf("after name, step = %q", out.Step)
	}
	if out := advance(t, f, "owner-1", "!Steam"); out.Step != "limit" {
		t.Fatalf("after trigger, step = %q", out.Step)
	}
	if out := advance(t, f, "owner-1", "3"); out.Step != "period" {
		t.Fatalf("after limit, step = %q", out.Step)
	}
	done := advance(t, f, "owner-1", "24")

	// Assert
	if !done.Done || done.Message != "✅ Аккаунт добавлен" {
		t.Fatalf("unexpected final output: %+v", done)
	}
	if done.Account == nil || done.Account.Name != "Main" || done.Account.Trigger != "!steam" {
		t.Fatalf("unexpected account view: %+v", done.Account)
	}
	if done.Account.LimitText != "3 за 24ч" {
		t.Fatalf("limit text = %q", done.Account.LimitText)
	}

	if len(f.repo.accounts) != 1 {
		t.Fatalf("expected one stored account, got %d", len(f.repo.accounts))
	}
	acc := f.repo.accounts[0]
	if acc.OwnerID != "owner-1" || acc.Trigger != "!steam" || acc.Secret != testSecret {
		t.Fatalf("unexpected stored account: %+v", acc)
	}
	if acc.Limit == nil || *acc.Limit != 3 || acc.PeriodHours == nil || *acc.PeriodHours != 24 {
		t.Fatalf("unexpected stored cap: %+v", acc)
	}

	// The dialog is finished: another input has nowhere to go.
	if _, err := f.uc.RegistrationAdvance(ownerCtx("owner-1"), RegistrationAdvanceInput{Text: "x"}); err == nil {
		t.Fatalf("expected error after dialog completed")
	}
}

func TestRegistrationUnlimited(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	advance(t, f, "owner-1", testSecret)
	advance(t, f, "owner-1", "Main")
	advance(t, f, "owner-1", "!steam")

	// Act: "-" at the limit step commits immediately without a period.
	done := advance(t, f, "owner-1", "-")

	// Assert
	if !done.Done {
		t.Fatalf("expected commit, got %+v", done)
	}
	if done.Account.LimitText != "без ограничений" {
		t.Fatalf("limit text = %q", done.Account.LimitText)
	}
	acc := f.repo.accounts[0]
	if acc.Limit != nil || acc.PeriodHours != nil {
		t.Fatalf("expected unlimited account, got %+v", acc)
	}
}

func TestRegistrationLifetimePeriod(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	advance(t, f, "owner-1", testSecret)
	advance(t, f, "owner-1", "Main")
	advance(t, f, "owner-1", "!steam")
	advance(t, f, "owner-1", "5")

	// Act: "0" at the period step means the cap never resets.
	done := advance(t, f, "owner-1", "0")

	// Assert
	if !done.Done {
		t.Fatalf("expected commit, got %+v", done)
	}
	acc := f.repo.accounts[0]
	if acc.Limit == nil || *acc.Limit != 5 || acc.PeriodHours != nil {
		t.Fatalf("expected lifetime cap, got %+v", acc)
	}
	if done.Account.LimitText != "5 навсегда" {
		t.Fatalf("limit text = %q", done.Account.LimitText)
	}
}

func TestRegistrationInvalidSecret(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Act
	out := advance(t, f, "owner-1", "!!!not-a-secret!!!")

	// Assert
	if out.Step != "secret" || !strings.HasPrefix(out.Message, "❌ Невалидный shared_secret") {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestRegistrationTriggerValidation(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = append(f.repo.accounts, entity.Account{ID: 99, OwnerID: "owner-1", Name: "Old", Trigger: "!taken", Secret: testSecret})
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	advance(t, f, "owner-1", testSecret)
	advance(t, f, "owner-1", "Main")

	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "Reserved", text: "guard_menu", want: "❌ Команда зарезервирована. Введи другую."},
		{name: "Duplicate", text: "!TAKEN", want: "❌ Такая команда уже существует. Введи другую."},
		{name: "DuplicateWithInvisibles", text: "!ta​ken‍", want: "❌ Такая команда уже существует. Введи другую."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			out := advance(t, f, "owner-1", tc.text)

			// Assert
			if out.Step != "trigger" || out.Message != tc.want {
				t.Fatalf("unexpected output: %+v", out)
			}
		})
	}
}

func TestRegistrationInvalidLimit(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	advance(t, f, "owner-1", testSecret)
	advance(t, f, "owner-1", "Main")
	advance(t, f, "owner-1", "!steam")

	for _, text := range []string{"abc", "0", "-5"} {
		// Act
		out := advance(t, f, "owner-1", text)

		// Assert
		if out.Step != "limit" || out.Message != "❌ Введи число > 0 или «-»." {
			t.Fatalf("text %q: unexpected output: %+v", text, out)
		}
	}
}

func TestRegistrationCancelOnSlash(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	advance(t, f, "owner-1", testSecret)

	// Act
	out := advance(t, f, "owner-1", "/menu")

	// Assert
	if !out.Cancelled || out.Message != "❌ Операция отменена." {
		t.Fatalf("unexpected output: %+v", out)
	}
	if _, err := f.uc.RegistrationAdvance(ownerCtx("owner-1"), RegistrationAdvanceInput{Text: "x"}); err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if len(f.repo.accounts) != 0 {
		t.Fatalf("cancelled dialog must not create accounts")
	}
}

func TestRegistrationWithoutSession(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())

	// Act
	_, err := f.uc.RegistrationAdvance(ownerCtx("owner-1"), RegistrationAdvanceInput{Text: "x"})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("expected not-found business error, got %v", err)
	}
}

func TestRegistrationRequiresAuth(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())

	// Act
	_, err := f.uc.RegistrationStart(context.Background())

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestRegistrationRestartsOnInconsistentSession(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Force the dialog into a step its collected fields cannot back.
	f.uc.sessMu.Lock()
	f.uc.sessions["owner-1"].Step = entity.RegStepLimit
	f.uc.sessMu.Unlock()

	// Act
	out := advance(t, f, "owner-1", "5")

	// Assert
	if out.Step != "secret" || !strings.HasPrefix(out.Message, "⚠️ Похоже, состояние добавления сбилось.") {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(f.repo.accounts) != 0 {
		t.Fatalf("inconsistent session must not create accounts")
	}
}

func TestRegistrationConcurrentAdvances(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	if _, err := f.uc.RegistrationStart(ownerCtx("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Act: hammer the same dialog with inputs that keep it on the
	// first step; the race detector flags any unserialized step.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.uc.RegistrationAdvance(ownerCtx("owner-1"), RegistrationAdvanceInput{Text: "not-a-secret"})
		}()
	}
	wg.Wait()

	// Assert
	f.uc.sessMu.Lock()
	sess := f.uc.sessions["owner-1"]
	f.uc.sessMu.Unlock()
	if sess == nil || sess.Step != entity.RegStepSecret {
		t.Fatalf("unexpected session state: %+v", sess)
	}
	if out := advance(t, f, "owner-1", testSecret); out.Step != "name" {
		t.Fatalf("after secret, step = %q", out.Step)
	}
}
