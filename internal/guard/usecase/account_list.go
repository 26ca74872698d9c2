package usecase

import (
	"context"
	"log/slog"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/msgtpl"
	"github.com/antonkuzmenko/guardcode/internal/pkg/trigger"
	"github.com/samber/lo"
)

type AccountListOutput struct {
	Accounts []AccountView
}

type AccountView struct {
	ID           int64
	Name         string
	Trigger      string
	LimitText    string
	MaskedSecret string
}

// AccountList returns the owner's registered accounts in registration
// order, with secrets masked.
func (s *Usecase) AccountList(ctx context.Context) (*AccountListOutput, error) {
	ctx, span := s.startSpan(ctx, "AccountList")
	defer span.End()

	owner, err := s.authenticatedOwner(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.repoDB.GetAccountsByOwner(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get accounts by owner", "owner_id", owner, "error", err)
		return nil, goerror.NewServer(err)
	}

	views := lo.Map(accounts, func(acc entity.Account, _ int) AccountView {
		return AccountView{
			ID:           acc.ID,
			Name:         acc.Name,
			Trigger:      trigger.Normalize(acc.Trigger),
			LimitText:    msgtpl.LimitText(acc.Limit, acc.PeriodHours),
			MaskedSecret: acc.MaskedSecret(),
		}
	})

	return &AccountListOutput{Accounts: views}, nil
}
