package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/clock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/config"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/idempotency"
	"github.com/antonkuzmenko/guardcode/internal/pkg/instrument"
	"github.com/antonkuzmenko/guardcode/internal/pkg/jwt"
	"github.com/antonkuzmenko/guardcode/internal/pkg/keylock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
	"github.com/antonkuzmenko/guardcode/internal/pkg/uid"
	"github.com/antonkuzmenko/guardcode/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type ChatReplyEvent struct {
	ChatID string
	Text   string
}

type repoMessaging interface {
	PublishChatReply(ctx context.Context, msg ChatReplyEvent) error
}

type repoDB interface {
	GetAccounts(ctx context.Context) ([]entity.Account, error)
	GetAccountsByOwner(ctx context.Context, ownerID string) ([]entity.Account, error)
	CreateAccount(ctx context.Context, in entity.NewAccount) error
	DeleteAccount(ctx context.Context, ownerID string, id int64) (*entity.Account, error)

	GetUsage(ctx context.Context, ownerID, buyerID, trig string) (*entity.UsageRecord, error)
	UpsertUsage(ctx context.Context, rec entity.UsageRecord) error
	RenameUsageTrigger(ctx context.Context, ownerID, buyerID, oldTrig, newTrig string) error

	CreateLog(ctx context.Context, e entity.LogEntry, maxLogs int32) error
	GetLogs(ctx context.Context, ownerID string, page, perPage int32) ([]entity.LogEntry, int64, error)

	GetSettings(ctx context.Context) (*entity.Settings, error)
	UpdateTemplate(ctx context.Context, template string) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	otp           steamotp.OTP
	clock         clock.Clocker
	locks         *keylock.KeyLock
	ins           instrument.Instrumentation

	sessMu   sync.Mutex
	sessions map[string]*entity.RegSession
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	OTP           steamotp.OTP
	Clock         clock.Clocker
	Locks         *keylock.KeyLock
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		otp:           dep.OTP,
		clock:         dep.Clock,
		locks:         dep.Locks,
		ins:           dep.Instrument,
		sessions:      make(map[string]*entity.RegSession),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("guard.usecase").Start(ctx, name)
}

func (s *Usecase) authenticatedOwner(ctx context.Context) (string, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return "", goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm.OwnerID, nil
}

// currentSettings tolerates a missing settings row: defaults apply
// until an owner customizes something.
func (s *Usecase) currentSettings(ctx context.Context) entity.Settings {
	settings, err := s.repoDB.GetSettings(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.Settings{}
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to load settings, falling back to defaults", "error", err)
		return entity.Settings{}
	}
	return *settings
}
