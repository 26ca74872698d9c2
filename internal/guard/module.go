package guard

import (
	"context"

	"github.com/antonkuzmenko/guardcode/internal/guard/inbound"
	"github.com/antonkuzmenko/guardcode/internal/guard/outbound/db"
	"github.com/antonkuzmenko/guardcode/internal/guard/outbound/mq"
	"github.com/antonkuzmenko/guardcode/internal/guard/usecase"
	"github.com/antonkuzmenko/guardcode/internal/pkg/clock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/config"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goroutine"
	"github.com/antonkuzmenko/guardcode/internal/pkg/idempotency"
	"github.com/antonkuzmenko/guardcode/internal/pkg/instrument"
	"github.com/antonkuzmenko/guardcode/internal/pkg/keylock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/messaging"
	"github.com/antonkuzmenko/guardcode/internal/pkg/router"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
	"github.com/antonkuzmenko/guardcode/internal/pkg/uid"
	"github.com/antonkuzmenko/guardcode/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	OTP         steamotp.OTP               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Locks       *keylock.KeyLock           `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbGuard := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbGuard,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		OTP:           dep.OTP,
		Clock:         dep.Clock,
		Locks:         dep.Locks,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	inbound.RegisterMQConsumer(ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
