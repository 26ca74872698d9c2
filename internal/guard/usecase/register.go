package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/msgtpl"
	"github.com/antonkuzmenko/guardcode/internal/pkg/trigger"
)

const (
	promptSecret  = "Шаг 1/5: отправь shared_secret одним сообщением."
	promptRestart = "⚠️ Похоже, состояние добавления сбилось. Начнём заново.\n\n" + promptSecret
	promptName    = "Шаг 2/5: введи название аккаунта (например: Main)."
	promptTrigger = "Шаг 3/5: введи команду (пример: !steam).\n⚠️ Команда будет очищена от невидимых символов."
	promptLimit   = "Шаг 4/5: введи лимит.\n\nЛимит — сколько раз один покупатель может запросить код по команде.\n• 5 — 5 запросов на покупателя\n• «-» — безлимит"
	promptPeriod  = "Шаг 5/5: введи период в часах.\n\nЕсли период = 24 — лимит обновится через 24 часа.\nЕсли период = 0 или «-» — лимит навсегда (на покупателя)."
)

type RegistrationStartOutput struct {
	Step    string
	Message string
}

// RegistrationStart opens (or reopens) the owner's add-account dialog
// at the first step. An in-flight dialog is discarded.
func (s *Usecase) RegistrationStart(ctx context.Context) (*RegistrationStartOutput, error) {
	_, span := s.startSpan(ctx, "RegistrationStart")
	defer span.End()

	owner, err := s.authenticatedOwner(ctx)
	if err != nil {
		return nil, err
	}

	sess := &entity.RegSession{OwnerID: owner, Step: entity.RegStepSecret, StartedAt: s.clock.Now()}
	_ = s.locks.Do(regLockKey(owner), func() error {
		s.sessMu.Lock()
		s.sessions[owner] = sess
		s.sessMu.Unlock()
		return nil
	})

	return &RegistrationStartOutput{Step: sess.Step.String(), Message: promptSecret}, nil
}

// regLockKey scopes the dialog lock per owner; steps for different
// owners never serialize against each other.
func regLockKey(owner string) string {
	return "reg|" + owner
}

type RegistrationAdvanceInput struct {
	Text string `validate:"required"`
}

type RegistrationAdvanceOutput struct {
	Step      string
	Message   string
	Done      bool
	Cancelled bool
	Account   *RegisteredAccount
}

type RegisteredAccount struct {
	ID           int64
	Name         string
	Trigger      string
	LimitText    string
	MaskedSecret string
}

// RegistrationAdvance feeds one owner input into the dialog. Inputs
// starting with "/" cancel it; an inconsistent session restarts from
// the first step. Steps for the same owner run one at a time: the
// session record is read and mutated under the owner's dialog lock.
func (s *Usecase) RegistrationAdvance(ctx context.Context, in RegistrationAdvanceInput) (*RegistrationAdvanceOutput, error) {
	ctx, span := s.startSpan(ctx, "RegistrationAdvance")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	owner, err := s.authenticatedOwner(ctx)
	if err != nil {
		return nil, err
	}

	var out *RegistrationAdvanceOutput
	err = s.locks.Do(regLockKey(owner), func() error {
		var stepErr error
		out, stepErr = s.advanceStep(ctx, owner, in.Text)
		return stepErr
	})
	return out, err
}

func (s *Usecase) advanceStep(ctx context.Context, owner, input string) (*RegistrationAdvanceOutput, error) {
	s.sessMu.Lock()
	sess := s.sessions[owner]
	s.sessMu.Unlock()
	if sess == nil {
		return nil, goerror.NewBusiness("no registration in progress", goerror.CodeNotFound)
	}

	text := strings.TrimSpace(input)
	if text == "" {
		return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: promptForStep(sess.Step)}, nil
	}

	if strings.HasPrefix(text, "/") {
		s.dropSession(owner)
		return &RegistrationAdvanceOutput{Cancelled: true, Message: "❌ Операция отменена."}, nil
	}

	switch sess.Step {
	case entity.RegStepSecret:
		return s.advanceSecret(sess, text)
	case entity.RegStepName:
		return s.advanceName(sess, text)
	case entity.RegStepTrigger:
		return s.advanceTrigger(ctx, sess, text)
	case entity.RegStepLimit:
		return s.advanceLimit(ctx, sess, text)
	case entity.RegStepPeriod:
		return s.advancePeriod(ctx, sess, text)
	default:
		return s.restart(sess), nil
	}
}

// RegistrationCancel drops the owner's in-flight dialog, if any.
func (s *Usecase) RegistrationCancel(ctx context.Context) error {
	_, span := s.startSpan(ctx, "RegistrationCancel")
	defer span.End()

	owner, err := s.authenticatedOwner(ctx)
	if err != nil {
		return err
	}

	_ = s.locks.Do(regLockKey(owner), func() error {
		s.dropSession(owner)
		return nil
	})
	return nil
}

func (s *Usecase) dropSession(owner string) {
	s.sessMu.Lock()
	delete(s.sessions, owner)
	s.sessMu.Unlock()
}

func (s *Usecase) restart(sess *entity.RegSession) *RegistrationAdvanceOutput {
	*sess = entity.RegSession{OwnerID: sess.OwnerID, Step: entity.RegStepSecret, StartedAt: s.clock.Now()}
	return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: promptRestart}
}

func (s *Usecase) advanceSecret(sess *entity.RegSession, text string) (*RegistrationAdvanceOutput, error) {
	// The secret is accepted only if it decodes into a usable key.
	if err := s.otp.Validate(text); err != nil {
		return &RegistrationAdvanceOutput{
			Step:    sess.Step.String(),
			Message: "❌ Невалидный shared_secret.\n\nОтправь shared_secret ещё раз одним сообщением.",
		}, nil
	}

	sess.Secret = text
	sess.Step = entity.RegStepName
	return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: promptName}, nil
}

func (s *Usecase) advanceName(sess *entity.RegSession, text string) (*RegistrationAdvanceOutput, error) {
	sess.Name = text
	sess.Step = entity.RegStepTrigger
	return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: promptTrigger}, nil
}

func (s *Usecase) advanceTrigger(ctx context.Context, sess *entity.RegSession, text string) (*RegistrationAdvanceOutput, error) {
	trig := trigger.Normalize(text)
	stay := func(msg string) *RegistrationAdvanceOutput {
		return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: msg}
	}

	if trig == "" {
		return stay("❌ Команда пустая. Введи ещё раз."), nil
	}
	if trigger.Reserved(trig) {
		return stay("❌ Команда зарезервирована. Введи другую."), nil
	}

	accounts, err := s.repoDB.GetAccountsByOwner(ctx, sess.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get accounts by owner", "owner_id", sess.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}
	for i := range accounts {
		if trigger.Normalize(accounts[i].Trigger) == trig {
			return stay("❌ Такая команда уже существует. Введи другую."), nil
		}
	}

	sess.Trigger = trig
	sess.Step = entity.RegStepLimit
	return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: promptLimit}, nil
}

func (s *Usecase) advanceLimit(ctx context.Context, sess *entity.RegSession, text string) (*RegistrationAdvanceOutput, error) {
	if sess.Secret == "" || sess.Name == "" || sess.Trigger == "" {
		return s.restart(sess), nil
	}

	if text == "-" {
		return s.commit(ctx, sess, nil, nil)
	}

	limit, err := strconv.ParseInt(text, 10, 64)
	if err != nil || limit <= 0 {
		return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: "❌ Введи число > 0 или «-»."}, nil
	}

	sess.Limit = &limit
	sess.Step = entity.RegStepPeriod
	return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: promptPeriod}, nil
}

func (s *Usecase) advancePeriod(ctx context.Context, sess *entity.RegSession, text string) (*RegistrationAdvanceOutput, error) {
	if sess.Secret == "" || sess.Name == "" || sess.Trigger == "" || sess.Limit == nil {
		return s.restart(sess), nil
	}

	if text == "-" || text == "0" {
		return s.commit(ctx, sess, sess.Limit, nil)
	}

	hours, err := strconv.ParseInt(text, 10, 64)
	if err != nil || hours <= 0 {
		return &RegistrationAdvanceOutput{Step: sess.Step.String(), Message: "❌ Введи число > 0, либо «-» / «0»."}, nil
	}

	return s.commit(ctx, sess, sess.Limit, &hours)
}

func (s *Usecase) commit(ctx context.Context, sess *entity.RegSession, limit, periodHours *int64) (*RegistrationAdvanceOutput, error) {
	acc := entity.NewAccount{
		ID:          s.uid.Generate(),
		OwnerID:     sess.OwnerID,
		Name:        sess.Name,
		Trigger:     sess.Trigger,
		Secret:      sess.Secret,
		Limit:       limit,
		PeriodHours: periodHours,
	}

	if err := s.repoDB.CreateAccount(ctx, acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo create account", "owner_id", sess.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.dropSession(sess.OwnerID)

	masked := entity.Account{Secret: sess.Secret}.MaskedSecret()
	return &RegistrationAdvanceOutput{
		Done:    true,
		Message: "✅ Аккаунт добавлен",
		Account: &RegisteredAccount{
			ID:           acc.ID,
			Name:         acc.Name,
			Trigger:      acc.Trigger,
			LimitText:    msgtpl.LimitText(limit, periodHours),
			MaskedSecret: masked,
		},
	}, nil
}

func promptForStep(step entity.RegStep) string {
	switch step {
	case entity.RegStepName:
		return promptName
	case entity.RegStepTrigger:
		return promptTrigger
	case entity.RegStepLimit:
		return promptLimit
	case entity.RegStepPeriod:
		return promptPeriod
	default:
		return promptSecret
	}
}
