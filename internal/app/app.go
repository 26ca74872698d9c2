package app

import (
	"context"
	"net/http"

	"github.com/antonkuzmenko/guardcode/internal/pkg/clock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/config"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goroutine"
	"github.com/antonkuzmenko/guardcode/internal/pkg/idempotency"
	"github.com/antonkuzmenko/guardcode/internal/pkg/instrument"
	"github.com/antonkuzmenko/guardcode/internal/pkg/jwt"
	"github.com/antonkuzmenko/guardcode/internal/pkg/keylock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/messaging"
	"github.com/antonkuzmenko/guardcode/internal/pkg/router"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
	"github.com/antonkuzmenko/guardcode/internal/pkg/uid"
	"github.com/antonkuzmenko/guardcode/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	otp       steamotp.OTP
	locks     *keylock.KeyLock
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
