//go:build integration

package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/model"
	"notify_hub/internal/push"
	"notify_hub/internal/service/pushtask"
	"notify_hub/internal/store/memory"
)

type notifyingGateway struct {
	inner push.Gateway
	done  chan struct{}
}

func (g *notifyingGateway) SendToToken(ctx context.Context, token, title, body string, data map[string]string) push.Result {
	res := g.inner.SendToToken(ctx, token, title, body, data)
	select {
	case <-g.done:
	default:
		close(g.done)
	}
	return res
}

func (g *notifyingGateway) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (push.MulticastResult, error) {
	return g.inner.SendMulticast(ctx, tokens, title, body, data)
}

func TestConsumerIntegration(t *testing.T) {
	ctx := context.Background()
	amqpURL, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	cfg := config.New()
	cfg.RabbitMQURL = amqpURL
	cfg.PushBackoff = time.Millisecond

	st := memory.New(zap.NewNop())
	token := "tok-1"
	user := st.SeedUser(model.User{Name: "Dana", Email: "dana@example.com", PushToken: &token})

	gw := &okGateway{}
	done := make(chan struct{})
	sentGw := &notifyingGateway{inner: gw, done: done}
	exec := pushtask.NewExecutor(cfg, st, st, sentGw, zap.NewNop())
	consumer := NewConsumer(cfg, exec, zap.NewNop())

	consumeCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Start(consumeCtx)
	}()

	require.NoError(t, waitForConsumer(ctx, amqpURL, cfg.RabbitQueue, 5*time.Second))

	publishTask(t, amqpURL, cfg.RabbitExchange, "push.notification", model.PushTask{
		NotificationID: 7,
		UserID:         user.ID,
		Title:          "t",
		Body:           "b",
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for consumer")
	}

	cancel()
	select {
	case <-time.After(3 * time.Second):
		t.Fatalf("consumer did not stop")
	case <-errCh:
	}
}

func publishTask(t *testing.T, amqpURL, exchange, routingKey string, task model.PushTask) {
	t.Helper()

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	require.NoError(t, err)

	body, err := json.Marshal(task)
	require.NoError(t, err)

	err = ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	require.NoError(t, err)
}

func waitForConsumer(ctx context.Context, amqpURL, queue string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := amqp.Dial(amqpURL)
			if err != nil {
				continue
			}
			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				continue
			}
			q, err := ch.QueueInspect(queue)
			_ = ch.Close()
			_ = conn.Close()
			if err != nil {
				continue
			}
			if q.Consumers > 0 {
				return nil
			}
		}
	}
}
