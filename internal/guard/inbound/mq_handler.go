package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/antonkuzmenko/guardcode/internal/guard/usecase"
	"github.com/antonkuzmenko/guardcode/internal/pkg/instrument"
	"github.com/antonkuzmenko/guardcode/internal/pkg/messaging"
	"github.com/antonkuzmenko/guardcode/internal/pkg/uid"
	"github.com/antonkuzmenko/guardcode/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) ChatMessageReceived(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("guard.inbound.mq").Start(ctx, "ChatMessageReceived")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: chat message received", "msg_body", string(body))

	var payload event.ChatMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of chat message", "msg_body", string(body), "error", err)
		return nil
	}

	if _, err := h.uc.HandleChatMessage(ctx, usecase.HandleChatMessageInput{
		MessageID: payload.MessageID,
		ChatID:    payload.ChatID,
		BuyerID:   payload.BuyerID,
		Text:      payload.Text,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume chat message", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
