package usecase

import (
	"context"
	"log/slog"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/samber/lo"
)

type LogListInput struct {
	Page int32 `validate:"gte=0"`
}

type LogListOutput struct {
	Entries    []LogView
	Page       int32
	TotalPages int32
}

type LogView struct {
	TS      int64
	Kind    string
	Name    string
	Trigger string
	BuyerID string
	Msg     string
}

// LogList returns one page of the owner's activity log, newest first.
func (s *Usecase) LogList(ctx context.Context, in LogListInput) (*LogListOutput, error) {
	ctx, span := s.startSpan(ctx, "LogList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	owner, err := s.authenticatedOwner(ctx)
	if err != nil {
		return nil, err
	}

	entries, total, err := s.repoDB.GetLogs(ctx, owner, in.Page, entity.LogsPerPage)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get logs", "owner_id", owner, "error", err)
		return nil, goerror.NewServer(err)
	}

	totalPages := int32((total + int64(entity.LogsPerPage) - 1) / int64(entity.LogsPerPage))
	if totalPages < 1 {
		totalPages = 1
	}

	views := lo.Map(entries, func(e entity.LogEntry, _ int) LogView {
		return LogView{
			TS:      e.TS,
			Kind:    string(e.Kind),
			Name:    e.Name,
			Trigger: e.Trigger,
			BuyerID: e.BuyerID,
			Msg:     e.Msg,
		}
	})

	return &LogListOutput{Entries: views, Page: in.Page, TotalPages: totalPages}, nil
}
