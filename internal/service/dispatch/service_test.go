package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notify_hub/internal/cache"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	"notify_hub/internal/model"
	"notify_hub/internal/sse"
	"notify_hub/internal/store/memory"
)

type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	keys     []string
}

func (p *capturePublisher) Publish(_ context.Context, payload []byte, routingKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *capturePublisher) tasks(t *testing.T) []model.PushTask {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.PushTask, 0, len(p.payloads))
	for _, raw := range p.payloads {
		var task model.PushTask
		require.NoError(t, json.Unmarshal(raw, &task))
		out = append(out, task)
	}
	return out
}

type notificationRepoMock struct {
	mock.Mock
}

func (m *notificationRepoMock) CreateWithDeliveries(ctx context.Context, n model.Notification, recipientIDs []int64) (model.Notification, error) {
	args := m.Called(ctx, n, recipientIDs)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *notificationRepoMock) ListAll(ctx context.Context, limit, offset int) ([]model.NotificationWithSender, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.NotificationWithSender), args.Get(1).(int64), args.Error(2)
}

func (m *notificationRepoMock) GetDetail(ctx context.Context, id int64) (*model.NotificationDetail, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*model.NotificationDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *notificationRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(t *testing.T, st *memory.Store) (*Service, *capturePublisher, *sse.Hub, context.CancelFunc) {
	t.Helper()
	cfg := config.New()
	hub := sse.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	pub := &capturePublisher{}
	svc := NewService(cfg, st, st, hub, pub, cache.NewUnreadCounts(cfg, zap.NewNop()), zap.NewNop())
	return svc, pub, hub, cancel
}

func TestDispatchValidation(t *testing.T) {
	st := memory.New(zap.NewNop())
	svc, _, _, cancel := newTestService(t, st)
	defer cancel()

	_, err := svc.Dispatch(context.Background(), 1, "", "body", []int64{1})
	require.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Dispatch(context.Background(), 1, strings.Repeat("x", 256), "body", []int64{1})
	require.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Dispatch(context.Background(), 1, "title", "", []int64{1})
	require.ErrorIs(t, err, domain.ErrInvalidBody)

	_, err = svc.Dispatch(context.Background(), 1, "title", strings.Repeat("x", 5001), []int64{1})
	require.ErrorIs(t, err, domain.ErrInvalidBody)
}

func TestDispatchFanOut(t *testing.T) {
	st := memory.New(zap.NewNop())
	admin := st.SeedUser(model.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true})
	alice := st.SeedUser(model.User{Name: "Alice", Email: "alice@example.com"})
	bob := st.SeedUser(model.User{Name: "Bob", Email: "bob@example.com"})

	svc, pub, hub, cancel := newTestService(t, st)
	defer cancel()

	client := &sse.Client{UserID: alice.ID, Ch: make(chan model.RealtimeEvent, 4)}
	hub.Register(client)
	defer hub.Unregister(client)

	res, err := svc.Dispatch(context.Background(), admin.ID, "hello", "world", []int64{alice.ID, bob.ID})
	require.NoError(t, err)
	require.Equal(t, 2, res.RecipientsCount)
	require.NotZero(t, res.Notification.ID)
	require.ElementsMatch(t, []int64{alice.ID, bob.ID}, res.Notification.RecipientIDs)

	// One delivery record per recipient.
	for _, userID := range []int64{alice.ID, bob.ID} {
		count, err := st.UnreadCount(context.Background(), userID)
		require.NoError(t, err)
		require.Equal(t, int64(1), count)
	}

	// One push task per recipient on the expected routing key.
	tasks := pub.tasks(t)
	require.Len(t, tasks, 2)
	gotUsers := []int64{tasks[0].UserID, tasks[1].UserID}
	require.ElementsMatch(t, []int64{alice.ID, bob.ID}, gotUsers)
	for _, task := range tasks {
		require.Equal(t, res.Notification.ID, task.NotificationID)
		require.Equal(t, "hello", task.Title)
		require.Equal(t, domain.DataTypeNotification, task.Data["type"])
	}
	for _, key := range pub.keys {
		require.Equal(t, "push.notification", key)
	}

	// Connected recipient sees the realtime event.
	select {
	case event := <-client.Ch:
		require.Equal(t, res.Notification.ID, event.NotificationID)
		require.Equal(t, "hello", event.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for realtime event")
	}
}

func TestDispatchDiscardsUnknownRecipients(t *testing.T) {
	st := memory.New(zap.NewNop())
	alice := st.SeedUser(model.User{Name: "Alice", Email: "alice@example.com"})

	svc, pub, _, cancel := newTestService(t, st)
	defer cancel()

	res, err := svc.Dispatch(context.Background(), 1, "hello", "world", []int64{alice.ID, 9999, alice.ID})
	require.NoError(t, err)
	require.Equal(t, 1, res.RecipientsCount)
	require.Len(t, pub.tasks(t), 1)
}

func TestDispatchNoRecipients(t *testing.T) {
	st := memory.New(zap.NewNop())
	svc, pub, _, cancel := newTestService(t, st)
	defer cancel()

	_, err := svc.Dispatch(context.Background(), 1, "hello", "world", []int64{9999})
	require.ErrorIs(t, err, domain.ErrNoRecipients)
	require.Empty(t, pub.tasks(t))

	_, err = svc.Dispatch(context.Background(), 1, "hello", "world", nil)
	require.ErrorIs(t, err, domain.ErrNoRecipients)
}

func TestDispatchToAllTargetsNonAdmins(t *testing.T) {
	st := memory.New(zap.NewNop())
	admin := st.SeedUser(model.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true})
	alice := st.SeedUser(model.User{Name: "Alice", Email: "alice@example.com"})
	bob := st.SeedUser(model.User{Name: "Bob", Email: "bob@example.com"})

	svc, pub, _, cancel := newTestService(t, st)
	defer cancel()

	res, err := svc.DispatchToAll(context.Background(), admin.ID, "hello", "world")
	require.NoError(t, err)
	require.Equal(t, 2, res.RecipientsCount)
	require.ElementsMatch(t, []int64{alice.ID, bob.ID}, res.Notification.RecipientIDs)

	// The sending admin never receives their own broadcast.
	count, err := st.UnreadCount(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Len(t, pub.tasks(t), 2)
}

func TestDispatchTransactionFailure(t *testing.T) {
	st := memory.New(zap.NewNop())
	alice := st.SeedUser(model.User{Name: "Alice", Email: "alice@example.com"})

	storeErr := errors.New("deadlock")
	repo := &notificationRepoMock{}
	repo.On("CreateWithDeliveries", mock.Anything, mock.Anything, mock.Anything).
		Return(model.Notification{}, storeErr).Once()

	cfg := config.New()
	hub := sse.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	pub := &capturePublisher{}
	svc := NewService(cfg, repo, st, hub, pub, cache.NewUnreadCounts(cfg, zap.NewNop()), zap.NewNop())

	_, err := svc.Dispatch(context.Background(), 1, "hello", "world", []int64{alice.ID})
	require.ErrorIs(t, err, domain.ErrDispatchFailed)
	require.ErrorIs(t, err, storeErr)
	require.Empty(t, pub.tasks(t))
	repo.AssertExpectations(t)
}
