package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/antonkuzmenko/guardcode/internal/pkg/config"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goroutine"
	"github.com/antonkuzmenko/guardcode/internal/pkg/instrument"
	"github.com/antonkuzmenko/guardcode/internal/pkg/messaging"
	"github.com/antonkuzmenko/guardcode/internal/pkg/uid"
	"github.com/antonkuzmenko/guardcode/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.guard.consumer_names")

	var consumers = []struct {
		name             string
		topic            string // destination where publisher sent message
		nsqConsumerName  string // for nsq
		natsConsumerName string // for nats
		handler          messaging.Handler
	}{
		{
			name:             event.ChatMessageConsumerGuard,
			topic:            event.ChatMessageDestination,
			nsqConsumerName:  event.ChatMessageConsumerGuard,
			natsConsumerName: event.ChatMessageConsumerGuard,
			handler:          mqHandler.ChatMessageReceived,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
