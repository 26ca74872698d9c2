package app

import (
	"log/slog"
	"os"

	"github.com/antonkuzmenko/guardcode/internal/guard"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.guard.enabled") {
		if err := guard.New(a.ctx, guard.Dependency{
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			OTP:         a.otp,
			Clock:       a.clock,
			Locks:       a.locks,
			Validator:   a.validator,
			Router:      a.router,
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Goroutine:   a.goroutine,
		}); err != nil {
			slog.Error("failed to init module guard", "error", err)
			os.Exit(1)
		}
	}
}
