package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
)

type AccountDeleteInput struct {
	ID int64 `validate:"required,gt=0"`
}

type AccountDeleteOutput struct {
	Name string
}

// AccountDelete removes one of the owner's accounts. Buyers lose the
// trigger immediately; ledger history is left in place.
func (s *Usecase) AccountDelete(ctx context.Context, in AccountDeleteInput) (*AccountDeleteOutput, error) {
	ctx, span := s.startSpan(ctx, "AccountDelete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	owner, err := s.authenticatedOwner(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := s.repoDB.DeleteAccount(ctx, owner, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete account", "owner_id", owner, "account_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AccountDeleteOutput{Name: removed.Name}, nil
}
