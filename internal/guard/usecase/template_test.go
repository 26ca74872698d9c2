package usecase

import (
	"errors"
	"testing"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/msgtpl"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
)

func TestTemplateGetDefault(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())

	// Act
	out, err := f.uc.TemplateGet(ownerCtx("owner-1"))

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsDefault || out.Template != msgtpl.DefaultTemplate {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestTemplateUpdateAndGet(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	custom := "Код {code} для {name}, осталось {left}"

	// Act
	if err := f.uc.TemplateUpdate(ownerCtx("owner-1"), TemplateUpdateInput{Template: "  " + custom + "  "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := f.uc.TemplateGet(ownerCtx("owner-1"))

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.IsDefault || out.Template != custom {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestTemplateDrivesReplies(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.settings = &entity.Settings{Template: "{name}: {code} ({limit_text})"}
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret, Limit: int64p(3), PeriodHours: int64p(12)},
	}

	// Act
	out, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), HandleChatMessageInput{
		ChatID:  "chat-1",
		BuyerID: "buyer-1",
		Text:    "!steam",
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Reply != "Main: THTN4 (3 за 12ч)" {
		t.Fatalf("reply = %q", out.Reply)
	}
}

func TestTemplateUpdateRejectsEmpty(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())

	// Act
	err := f.uc.TemplateUpdate(ownerCtx("owner-1"), TemplateUpdateInput{Template: ""})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}
