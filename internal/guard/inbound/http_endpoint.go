package inbound

import (
	"github.com/antonkuzmenko/guardcode/internal/guard/usecase"
	"github.com/antonkuzmenko/guardcode/internal/pkg/router"
	"github.com/samber/lo"
)

// HTTPEndpoint exposes HTTP handlers for the guard code workflows.
type HTTPEndpoint struct {
	uc uc
}

// ChatMessage runs one buyer chat message through the trigger matcher
// and returns whether it matched and the reply that was sent.
func (h *HTTPEndpoint) ChatMessage(r *router.Request) (any, error) {
	var req ChatMessageRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.HandleChatMessage(r.Context(), usecase.HandleChatMessageInput{
		MessageID: req.MessageID,
		ChatID:    req.ChatID,
		BuyerID:   req.BuyerID,
		Text:      req.Text,
	})
	if err != nil {
		return nil, err
	}

	return ChatMessageResponse{Matched: resp.Matched, Reply: resp.Reply}, nil
}

// RegistrationStart opens the add-account dialog at the first step.
func (h *HTTPEndpoint) RegistrationStart(r *router.Request) (any, error) {
	resp, err := h.uc.RegistrationStart(r.Context())
	if err != nil {
		return nil, err
	}

	return RegistrationStateResponse{Step: resp.Step, Message: resp.Message}, nil
}

// RegistrationAdvance feeds one input into the add-account dialog.
func (h *HTTPEndpoint) RegistrationAdvance(r *router.Request) (any, error) {
	var req RegistrationAdvanceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegistrationAdvance(r.Context(), usecase.RegistrationAdvanceInput{Text: req.Text})
	if err != nil {
		return nil, err
	}

	out := RegistrationStateResponse{
		Step:      resp.Step,
		Message:   resp.Message,
		Done:      resp.Done,
		Cancelled: resp.Cancelled,
	}
	if resp.Account != nil {
		out.Account = &AccountResponse{
			ID:           resp.Account.ID,
			Name:         resp.Account.Name,
			Trigger:      resp.Account.Trigger,
			LimitText:    resp.Account.LimitText,
			MaskedSecret: resp.Account.MaskedSecret,
		}
	}

	return out, nil
}

// RegistrationCancel drops the in-flight add-account dialog.
func (h *HTTPEndpoint) RegistrationCancel(r *router.Request) (any, error) {
	if err := h.uc.RegistrationCancel(r.Context()); err != nil {
		return nil, err
	}

	return RegistrationCancelResponse{}, nil
}

// AccountList returns the owner's accounts with masked secrets.
func (h *HTTPEndpoint) AccountList(r *router.Request) (any, error) {
	resp, err := h.uc.AccountList(r.Context())
	if err != nil {
		return nil, err
	}

	return AccountListResponse{
		Accounts: lo.Map(resp.Accounts, func(acc usecase.AccountView, _ int) AccountResponse {
			return AccountResponse{
				ID:           acc.ID,
				Name:         acc.Name,
				Trigger:      acc.Trigger,
				LimitText:    acc.LimitText,
				MaskedSecret: acc.MaskedSecret,
			}
		}),
	}, nil
}

// AccountDelete removes one of the owner's accounts by id.
func (h *HTTPEndpoint) AccountDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.AccountDelete(r.Context(), usecase.AccountDeleteInput{ID: id})
	if err != nil {
		return nil, err
	}

	return AccountDeleteResponse{Name: resp.Name}, nil
}

// LogList returns one page of the owner's activity log.
func (h *HTTPEndpoint) LogList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.LogList(r.Context(), usecase.LogListInput{Page: page})
	if err != nil {
		return nil, err
	}

	return LogListResponse{
		Entries: lo.Map(resp.Entries, func(e usecase.LogView, _ int) LogEntryResponse {
			return LogEntryResponse{
				TS:      e.TS,
				Kind:    e.Kind,
				Name:    e.Name,
				Trigger: e.Trigger,
				BuyerID: e.BuyerID,
				Msg:     e.Msg,
			}
		}),
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
	}, nil
}

// TemplateGet returns the reply template in effect.
func (h *HTTPEndpoint) TemplateGet(r *router.Request) (any, error) {
	resp, err := h.uc.TemplateGet(r.Context())
	if err != nil {
		return nil, err
	}

	return TemplateResponse{Template: resp.Template, IsDefault: resp.IsDefault}, nil
}

// TemplateUpdate replaces the reply template.
func (h *HTTPEndpoint) TemplateUpdate(r *router.Request) (any, error) {
	var req TemplateUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.TemplateUpdate(r.Context(), usecase.TemplateUpdateInput{Template: req.Template}); err != nil {
		return nil, err
	}

	return TemplateUpdateResponse{}, nil
}
