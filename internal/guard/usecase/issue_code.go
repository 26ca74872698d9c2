package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/idempotency"
	"github.com/antonkuzmenko/guardcode/internal/pkg/msgtpl"
	"github.com/antonkuzmenko/guardcode/internal/pkg/trigger"
)

const replyGenerationFailed = "❌ Ошибка генерации."

type HandleChatMessageInput struct {
	// MessageID deduplicates broker redeliveries; empty disables dedup.
	MessageID string
	ChatID    string `validate:"required"`
	BuyerID   string `validate:"required"`
	Text      string
}

type HandleChatMessageOutput struct {
	Matched bool
	Reply   string
}

// HandleChatMessage runs one buyer message through the trigger matcher
// and, on a match, the usage ledger. The first account whose trigger
// matches wins; everything else is ignored.
func (s *Usecase) HandleChatMessage(ctx context.Context, in HandleChatMessageInput) (*HandleChatMessageOutput, error) {
	ctx, span := s.startSpan(ctx, "HandleChatMessage")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.MessageID == "" {
		return s.processChatMessage(ctx, in)
	}

	var out *HandleChatMessageOutput
	err := s.idemp.Exec(ctx, "guard:chat_message:"+in.MessageID, func(ctx context.Context) error {
		var procErr error
		out, procErr = s.processChatMessage(ctx, in)
		return procErr
	}, idempotency.WithStateTTL(s.cfg.GetMinute("modules.guard.dedup_ttl_minutes")))

	if errors.Is(err, idempotency.ErrAlreadyInProgress) ||
		errors.Is(err, idempotency.ErrAlreadyCompleted) ||
		errors.Is(err, idempotency.ErrAlreadyFailed) {
		slog.InfoContext(ctx, "duplicate chat message dropped", "message_id", in.MessageID)
		return &HandleChatMessageOutput{}, nil
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Usecase) processChatMessage(ctx context.Context, in HandleChatMessageInput) (*HandleChatMessageOutput, error) {
	text := trigger.Normalize(in.Text)
	if text == "" {
		return &HandleChatMessageOutput{}, nil
	}

	accounts, err := s.repoDB.GetAccounts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get accounts", "error", err)
		return nil, goerror.NewServer(err)
	}

	for i := range accounts {
		acc := accounts[i]
		if norm := trigger.Normalize(acc.Trigger); norm == "" || norm != text {
			continue
		}

		reply := s.issueCode(ctx, acc, text, in.BuyerID)
		s.sendReply(ctx, in.ChatID, reply)

		return &HandleChatMessageOutput{Matched: true, Reply: reply}, nil
	}

	return &HandleChatMessageOutput{}, nil
}

// issueCode produces the reply for a matched account: either a fresh
// code or a denial. Ledger state for one (owner, buyer, trigger) key is
// mutated under its lock so concurrent requests cannot double-spend.
func (s *Usecase) issueCode(ctx context.Context, acc entity.Account, trig, buyerID string) string {
	if acc.Limit == nil {
		return s.issueUnlimited(ctx, acc, trig, buyerID)
	}

	var reply string
	_ = s.locks.Do(acc.OwnerID+"|"+buyerID+"|"+trig, func() error {
		reply = s.issueLimited(ctx, acc, trig, buyerID)
		return nil
	})
	return reply
}

func (s *Usecase) issueUnlimited(ctx context.Context, acc entity.Account, trig, buyerID string) string {
	code, err := s.otp.GenerateAt(acc.Secret, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "owner_id", acc.OwnerID, "trigger", trig, "error", err)
		s.pushLog(ctx, acc, trig, buyerID, entity.LogKindError, "ошибка генерации (безлимит)")
		return replyGenerationFailed
	}

	s.pushLog(ctx, acc, trig, buyerID, entity.LogKindCode, "выдан (безлимит)")

	return s.renderReply(ctx, acc, trig, code, msgtpl.Unlimited, msgtpl.Unlimited)
}

func (s *Usecase) issueLimited(ctx context.Context, acc entity.Account, trig, buyerID string) string {
	limit := *acc.Limit
	now := s.clock.Now().Unix()

	rec, err := s.loadUsage(ctx, acc, trig, buyerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get usage", "owner_id", acc.OwnerID, "trigger", trig, "error", err)
		return replyGenerationFailed
	}

	if acc.PeriodHours == nil {
		if rec.Count >= limit {
			s.saveUsage(ctx, rec)
			s.pushLog(ctx, acc, trig, buyerID, entity.LogKindLimit, fmt.Sprintf("лимит навсегда исчерпан (%d)", limit))
			return fmt.Sprintf("❌ Лимит %d навсегда исчерпан.", limit)
		}
	} else {
		periodSeconds := *acc.PeriodHours * 3600
		if rec.ResetTime == nil {
			rt := now + periodSeconds
			rec.ResetTime = &rt
		}
		if now > *rec.ResetTime {
			rec.Count = 0
			rt := now + periodSeconds
			rec.ResetTime = &rt
		}

		if rec.Count >= limit {
			secondsLeft := *rec.ResetTime - now
			s.saveUsage(ctx, rec)
			s.pushLog(ctx, acc, trig, buyerID, entity.LogKindLimit, fmt.Sprintf("лимит исчерпан, ждать %ds", secondsLeft))
			return fmt.Sprintf("❌ Лимит исчерпан. Новый запрос через %s.", msgtpl.FormatTimeLeft(secondsLeft))
		}
	}

	// Generation runs before the ledger is charged: a failed code must
	// never consume quota.
	code, err := s.otp.GenerateAt(acc.Secret, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "owner_id", acc.OwnerID, "trigger", trig, "error", err)
		s.pushLog(ctx, acc, trig, buyerID, entity.LogKindError, "ошибка генерации")
		return replyGenerationFailed
	}

	rec.Count++
	s.saveUsage(ctx, rec)

	left := limit - rec.Count
	if left < 0 {
		left = 0
	}
	total := msgtpl.Unlimited
	if acc.PeriodHours != nil {
		total = strconv.FormatInt(limit, 10)
	}

	s.pushLog(ctx, acc, trig, buyerID, entity.LogKindCode, fmt.Sprintf("выдан, осталось %d/%s", left, total))

	return s.renderReply(ctx, acc, trig, code, strconv.FormatInt(left, 10), total)
}

// loadUsage fetches the ledger record for the normalized trigger,
// migrating a record stored under the legacy lowercased key if one
// exists and the normalized key does not.
func (s *Usecase) loadUsage(ctx context.Context, acc entity.Account, trig, buyerID string) (entity.UsageRecord, error) {
	rec, err := s.repoDB.GetUsage(ctx, acc.OwnerID, buyerID, trig)
	if err == nil {
		return *rec, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return entity.UsageRecord{}, err
	}

	legacy := strings.ToLower(strings.TrimSpace(acc.Trigger))
	if legacy != "" && legacy != trig {
		old, err := s.repoDB.GetUsage(ctx, acc.OwnerID, buyerID, legacy)
		if err == nil {
			if err := s.repoDB.RenameUsageTrigger(ctx, acc.OwnerID, buyerID, legacy, trig); err != nil {
				return entity.UsageRecord{}, err
			}
			old.Trigger = trig
			return *old, nil
		}
		if !errors.Is(err, goerror.ErrNotFound) {
			return entity.UsageRecord{}, err
		}
	}

	return entity.UsageRecord{OwnerID: acc.OwnerID, BuyerID: buyerID, Trigger: trig}, nil
}

func (s *Usecase) saveUsage(ctx context.Context, rec entity.UsageRecord) {
	if err := s.repoDB.UpsertUsage(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert usage", "owner_id", rec.OwnerID, "trigger", rec.Trigger, "error", err)
	}
}

func (s *Usecase) renderReply(ctx context.Context, acc entity.Account, trig, code, left, total string) string {
	return msgtpl.Render(s.currentSettings(ctx).Template, map[string]string{
		"code":       code,
		"name":       acc.Name,
		"command":    trig,
		"left":       left,
		"total":      total,
		"limit_text": msgtpl.LimitText(acc.Limit, acc.PeriodHours),
	})
}

func (s *Usecase) pushLog(ctx context.Context, acc entity.Account, trig, buyerID string, kind entity.LogKind, msg string) {
	err := s.repoDB.CreateLog(ctx, entity.LogEntry{
		ID:      s.uid.Generate(),
		OwnerID: acc.OwnerID,
		TS:      s.clock.Now().Unix(),
		Kind:    kind,
		Name:    acc.Name,
		Trigger: trig,
		BuyerID: buyerID,
		Msg:     msg,
	}, s.currentSettings(ctx).EffectiveMaxLogs())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create log", "owner_id", acc.OwnerID, "error", err)
	}
}

func (s *Usecase) sendReply(ctx context.Context, chatID, reply string) {
	if err := s.repoMessaging.PublishChatReply(ctx, ChatReplyEvent{ChatID: chatID, Text: reply}); err != nil {
		slog.ErrorContext(ctx, "failed to publish chat reply", "chat_id", chatID, "error", err)
	}
}
