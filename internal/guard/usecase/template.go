package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/msgtpl"
)

type TemplateGetOutput struct {
	Template  string
	IsDefault bool
}

// TemplateGet returns the reply template currently in effect.
func (s *Usecase) TemplateGet(ctx context.Context) (*TemplateGetOutput, error) {
	ctx, span := s.startSpan(ctx, "TemplateGet")
	defer span.End()

	if _, err := s.authenticatedOwner(ctx); err != nil {
		return nil, err
	}

	tpl := strings.TrimSpace(s.currentSettings(ctx).Template)
	if tpl == "" {
		return &TemplateGetOutput{Template: msgtpl.DefaultTemplate, IsDefault: true}, nil
	}
	return &TemplateGetOutput{Template: tpl}, nil
}

type TemplateUpdateInput struct {
	Template string `validate:"required,max=2000"`
}

// TemplateUpdate replaces the reply template.
func (s *Usecase) TemplateUpdate(ctx context.Context, in TemplateUpdateInput) error {
	ctx, span := s.startSpan(ctx, "TemplateUpdate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if _, err := s.authenticatedOwner(ctx); err != nil {
		return err
	}

	if err := s.repoDB.UpdateTemplate(ctx, strings.TrimSpace(in.Template)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update template", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
