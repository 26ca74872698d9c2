package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
)

func TestHandleChatMessageUnlimited(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret},
	}

	// Act
	out, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), HandleChatMessageInput{
		ChatID:  "chat-1",
		BuyerID: "buyer-1",
		Text:    "!Steam",
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Matched {
		t.Fatalf("expected message to match")
	}
	want := "✅ Ваш код: THTN4\n📊 Осталось: ∞/∞"
	if out.Reply != want {
		t.Fatalf("reply = %q, want %q", out.Reply, want)
	}
	if len(f.repo.usage) != 0 {
		t.Fatalf("unlimited account must not create usage records, got %d", len(f.repo.usage))
	}
	if len(f.messaging.published) != 1 || f.messaging.published[0].ChatID != "chat-1" {
		t.Fatalf("expected one reply published to chat-1, got %+v", f.messaging.published)
	}
	if len(f.repo.logs) != 1 || f.repo.logs[0].Kind != entity.LogKindCode || f.repo.logs[0].Msg != "выдан (безлимит)" {
		t.Fatalf("unexpected log entries: %+v", f.repo.logs)
	}
}

func TestHandleChatMessageNoMatch(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret},
	}

	for _, text := range []string{"hello", "", "   "} {
		// Act
		out, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), HandleChatMessageInput{
			ChatID:  "chat-1",
			BuyerID: "buyer-1",
			Text:    text,
		})

		// Assert
		if err != nil {
			t.Fatalf("text %q: unexpected error: %v", text, err)
		}
		if out.Matched {
			t.Fatalf("text %q: expected no match", text)
		}
	}
	if len(f.messaging.published) != 0 {
		t.Fatalf("expected no replies published, got %+v", f.messaging.published)
	}
}

func TestHandleChatMessageWindowedLimit(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret, Limit: int64p(1), PeriodHours: int64p(24)},
	}
	in := HandleChatMessageInput{ChatID: "chat-1", BuyerID: "buyer-1", Text: "!steam"}

	// Act: first request spends the only slot.
	out, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if !strings.HasSuffix(out.Reply, "Осталось: 0/1") {
		t.Fatalf("first reply = %q, want left 0/1", out.Reply)
	}
	rec := f.repo.usage[usageKey("owner-1", "buyer-1", "!steam")]
	if rec.Count != 1 || rec.ResetTime == nil || *rec.ResetTime != 1700000000+24*3600 {
		t.Fatalf("unexpected usage record: %+v", rec)
	}

	// Act: second request inside the window is denied.
	out, err = f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if out.Reply != "❌ Лимит исчерпан. Новый запрос через 24ч 0м." {
		t.Fatalf("denial reply = %q", out.Reply)
	}

	// Act: after the window passes the counter resets.
	f.clock.Set(time.Unix(1700000000+24*3600+1, 0))
	out, err = f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if !strings.HasSuffix(out.Reply, "Осталось: 0/1") {
		t.Fatalf("post-window reply = %q, want left 0/1", out.Reply)
	}
	rec = f.repo.usage[usageKey("owner-1", "buyer-1", "!steam")]
	if rec.Count != 1 || *rec.ResetTime != 1700000000+48*3600+1 {
		t.Fatalf("window did not roll over: %+v", rec)
	}
}

func TestHandleChatMessageLifetimeLimit(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret, Limit: int64p(1)},
	}
	in := HandleChatMessageInput{ChatID: "chat-1", BuyerID: "buyer-1", Text: "!steam"}

	// Act
	out, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert: lifetime caps render an unlimited total.
	if !strings.HasSuffix(out.Reply, "Осталось: 0/∞") {
		t.Fatalf("first reply = %q, want left 0/∞", out.Reply)
	}

	// Act
	out, err = f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if out.Reply != "❌ Лимит 1 навсегда исчерпан." {
		t.Fatalf("denial reply = %q", out.Reply)
	}
	if f.repo.logs[len(f.repo.logs)-1].Kind != entity.LogKindLimit {
		t.Fatalf("expected LIMIT log entry, got %+v", f.repo.logs)
	}
}

func TestHandleChatMessageGenerationFailureDoesNotCharge(t *testing.T) {
	// Arrange
	f := newFixture(failingOTP{})
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret, Limit: int64p(3), PeriodHours: int64p(24)},
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
	if out.Reply != "❌ Ошибка генерации." {
		t.Fatalf("reply = %q", out.Reply)
	}
	if len(f.repo.usage) != 0 {
		t.Fatalf("failed generation must not consume quota, got %+v", f.repo.usage)
	}
	if f.repo.logs[0].Kind != entity.LogKindError {
		t.Fatalf("expected ERROR log entry, got %+v", f.repo.logs)
	}
}

func TestHandleChatMessageLegacyUsageMigration(t *testing.T) {
	// Arrange: the stored trigger contains an inner space, so the legacy
	// lowercased ledger key differs from the normalized one.
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!Ste Am", Secret: testSecret, Limit: int64p(2)},
	}
	f.repo.usage[usageKey("owner-1", "buyer-1", "!ste am")] = entity.UsageRecord{
		OwnerID: "owner-1", BuyerID: "buyer-1", Trigger: "!ste am", Count: 1,
	}

	// Act
	out, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), HandleChatMessageInput{
		ChatID:  "chat-1",
		BuyerID: "buyer-1",
		Text:    "!Steam",
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Matched {
		t.Fatalf("expected message to match")
	}
	if _, ok := f.repo.usage[usageKey("owner-1", "buyer-1", "!ste am")]; ok {
		t.Fatalf("legacy usage key must be renamed, usage: %+v", f.repo.usage)
	}
	rec, ok := f.repo.usage[usageKey("owner-1", "buyer-1", "!steam")]
	if !ok || rec.Count != 2 {
		t.Fatalf("migrated record not charged: %+v", f.repo.usage)
	}
}

func TestHandleChatMessageFirstMatchWins(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "First", Trigger: "!steam", Secret: testSecret},
		{ID: 2, OwnerID: "owner-2", Name: "Second", Trigger: "!STEAM", Secret: testSecret},
	}

	// Act
	_, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), HandleChatMessageInput{
		ChatID:  "chat-1",
		BuyerID: "buyer-1",
		Text:    "!steam",
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.logs) != 1 || f.repo.logs[0].Name != "First" {
		t.Fatalf("expected first account to win, logs: %+v", f.repo.logs)
	}
}

func TestHandleChatMessageDeduplicates(t *testing.T) {
	// Arrange
	f := newFixture(steamotp.New())
	f.repo.accounts = []entity.Account{
		{ID: 1, OwnerID: "owner-1", Name: "Main", Trigger: "!steam", Secret: testSecret},
	}
	in := HandleChatMessageInput{MessageID: "msg-1", ChatID: "chat-1", BuyerID: "buyer-1", Text: "!steam"}

	// Act
	first, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.uc.HandleChatMessage(ownerCtx("owner-1"), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if !first.Matched {
		t.Fatalf("first delivery should be processed")
	}
	if second.Matched {
		t.Fatalf("redelivery should be dropped")
	}
	if len(f.messaging.published) != 1 {
		t.Fatalf("expected exactly one reply published, got %d", len(f.messaging.published))
	}
}
