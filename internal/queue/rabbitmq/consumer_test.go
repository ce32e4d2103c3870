package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/model"
	"notify_hub/internal/push"
	"notify_hub/internal/service/pushtask"
	"notify_hub/internal/store/memory"
)

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *userRepoMock) ListNonAdmins(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *userRepoMock) UpdatePushToken(ctx context.Context, id int64, token, deviceType string) (*model.User, error) {
	args := m.Called(ctx, id, token, deviceType)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) ClearPushToken(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *userRepoMock) ClearPushTokenByValue(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type okGateway struct {
	sent int
}

func (g *okGateway) SendToToken(_ context.Context, _, _, _ string, _ map[string]string) push.Result {
	g.sent++
	return push.Result{Outcome: push.OutcomeOK}
}

func (g *okGateway) SendMulticast(_ context.Context, tokens []string, _, _ string, _ map[string]string) (push.MulticastResult, error) {
	return push.MulticastResult{SuccessCount: len(tokens)}, nil
}

type ackMock struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *ackMock) Ack(_ uint64, _ bool) error {
	a.acked++
	return nil
}

func (a *ackMock) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *ackMock) Reject(_ uint64, _ bool) error {
	return nil
}

func executorConfig() *config.Config {
	cfg := config.New()
	cfg.PushMaxAttempts = 3
	cfg.PushBackoff = time.Millisecond
	return cfg
}

func TestConsumerHandleMessage(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		st := memory.New(zap.NewNop())
		gw := &okGateway{}
		exec := pushtask.NewExecutor(executorConfig(), st, st, gw, zap.NewNop())
		consumer := &Consumer{executor: exec, logger: zap.NewNop()}
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte("{bad json"),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
		require.Equal(t, 0, ack.nacked)
		require.Zero(t, gw.sent)
	})

	t.Run("missing fields", func(t *testing.T) {
		st := memory.New(zap.NewNop())
		gw := &okGateway{}
		exec := pushtask.NewExecutor(executorConfig(), st, st, gw, zap.NewNop())
		consumer := &Consumer{executor: exec, logger: zap.NewNop()}
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte(`{"notification_id":1}`),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
		require.Equal(t, 0, ack.nacked)
		require.Zero(t, gw.sent)
	})

	t.Run("store error -> nack", func(t *testing.T) {
		users := &userRepoMock{}
		users.On("FindByID", mock.Anything, int64(1)).Return(nil, errors.New("store failed")).Once()
		st := memory.New(zap.NewNop())
		gw := &okGateway{}
		exec := pushtask.NewExecutor(executorConfig(), users, st, gw, zap.NewNop())
		consumer := &Consumer{executor: exec, logger: zap.NewNop()}
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte(`{"notification_id":7,"user_id":1,"title":"t","body":"b"}`),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 0, ack.acked)
		require.Equal(t, 1, ack.nacked)
		require.True(t, ack.requeue)
		require.Zero(t, gw.sent)
		users.AssertExpectations(t)
	})

	t.Run("success -> ack", func(t *testing.T) {
		st := memory.New(zap.NewNop())
		token := "tok-1"
		user := st.SeedUser(model.User{Name: "Dana", Email: "dana@example.com", PushToken: &token})
		gw := &okGateway{}
		exec := pushtask.NewExecutor(executorConfig(), st, st, gw, zap.NewNop())
		consumer := &Consumer{executor: exec, logger: zap.NewNop()}
		ack := &ackMock{}

		payload, err := json.Marshal(model.PushTask{
			NotificationID: 7,
			UserID:         user.ID,
			Title:          "t",
			Body:           "b",
			Data:           map[string]string{"type": "notification"},
		})
		require.NoError(t, err)

		msg := amqp.Delivery{
			Body:         payload,
			Acknowledger: ack,
		}

		err = consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
		require.Equal(t, 0, ack.nacked)
		require.Equal(t, 1, gw.sent)
	})

	t.Run("user gone -> ack", func(t *testing.T) {
		st := memory.New(zap.NewNop())
		gw := &okGateway{}
		exec := pushtask.NewExecutor(executorConfig(), st, st, gw, zap.NewNop())
		consumer := &Consumer{executor: exec, logger: zap.NewNop()}
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte(`{"notification_id":7,"user_id":404,"title":"t","body":"b"}`),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
		require.Equal(t, 0, ack.nacked)
		require.Zero(t, gw.sent)
	})
}
