package inbound

import (
	"context"

	"github.com/antonkuzmenko/guardcode/internal/guard/usecase"
	"github.com/antonkuzmenko/guardcode/internal/pkg/router"
)

type uc interface {
	HandleChatMessage(ctx context.Context, in usecase.HandleChatMessageInput) (*usecase.HandleChatMessageOutput, error)

	RegistrationStart(ctx context.Context) (*usecase.RegistrationStartOutput, error)
	RegistrationAdvance(ctx context.Context, in usecase.RegistrationAdvanceInput) (*usecase.RegistrationAdvanceOutput, error)
	RegistrationCancel(ctx context.Context) error

	AccountList(ctx context.Context) (*usecase.AccountListOutput, error)
	AccountDelete(ctx context.Context, in usecase.AccountDeleteInput) (*usecase.AccountDeleteOutput, error)

	LogList(ctx context.Context, in usecase.LogListInput) (*usecase.LogListOutput, error)

	TemplateGet(ctx context.Context) (*usecase.TemplateGetOutput, error)
	TemplateUpdate(ctx context.Context, in usecase.TemplateUpdateInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Chat webhook (the marketplace transport posts buyer messages here)
	r.POST("/api/v1/guard/messages", end.ChatMessage)

	// Account registration dialog (need authenticated)
	r.POST("/api/v1/guard/registration", end.RegistrationStart)
	r.PUT("/api/v1/guard/registration", end.RegistrationAdvance)
	r.DELETE("/api/v1/guard/registration", end.RegistrationCancel)

	// Account management (need authenticated)
	r.GET("/api/v1/guard/accounts", end.AccountList)
	r.DELETE("/api/v1/guard/accounts/:id", end.AccountDelete)

	// Activity log (need authenticated)
	r.GET("/api/v1/guard/logs", end.LogList)

	// Reply template (need authenticated)
	r.GET("/api/v1/guard/template", end.TemplateGet)
	r.PUT("/api/v1/guard/template", end.TemplateUpdate)
}
