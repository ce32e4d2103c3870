package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notify_hub/internal/cache"
	"notify_hub/internal/config"
	"notify_hub/internal/http/controller"
	"notify_hub/internal/http/dto"
	"notify_hub/internal/model"
	"notify_hub/internal/service/admin"
	"notify_hub/internal/service/dispatch"
	"notify_hub/internal/service/inbox"
	"notify_hub/internal/sse"
	"notify_hub/internal/store/memory"

	httpserver "notify_hub/internal/http"
)

const testSecret = "e2e-secret"

type noopPublisher struct{}

func (n *noopPublisher) Publish(ctx context.Context, payload []byte, routingKey string) error {
	_ = ctx
	_ = payload
	_ = routingKey
	return nil
}

type env struct {
	server *httptest.Server
	store  *memory.Store
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	cfg.JWTSecret = testSecret
	cfg.SSEHeartbeat = 5 * time.Second

	logger := zap.NewNop()
	st := memory.New(logger)
	hub := sse.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	unread := cache.NewUnreadCounts(cfg, logger)
	dispatchSvc := dispatch.NewService(cfg, st, st, hub, &noopPublisher{}, unread, logger)
	inboxSvc := inbox.NewService(cfg, st, unread, logger)
	adminSvc := admin.NewService(cfg, st, st, logger)
	handler := controller.NewHandler(cfg, dispatchSvc, inboxSvc, adminSvc, st, hub, logger)
	router := httpserver.NewRouter(cfg, handler, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &env{server: server, store: st}
}

func signToken(t *testing.T, userID int64, isAdmin bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID,
		"admin": isAdmin,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, dto.Envelope) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env dto.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestDispatchToStreamFlow(t *testing.T) {
	e := setupEnv(t)
	adminUser := e.store.SeedUser(model.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true})
	alice := e.store.SeedUser(model.User{Name: "Alice", Email: "alice@example.com"})

	// Open the recipient's SSE stream first.
	streamReq, err := http.NewRequest(http.MethodGet, e.server.URL+"/api/v1/notifications/stream", nil)
	require.NoError(t, err)
	streamReq.Header.Set("Authorization", "Bearer "+signToken(t, alice.ID, false))
	streamResp, err := http.DefaultClient.Do(streamReq)
	require.NoError(t, err)
	defer func() { _ = streamResp.Body.Close() }()
	require.Equal(t, http.StatusOK, streamResp.StatusCode)
	require.Equal(t, "text/event-stream", streamResp.Header.Get("Content-Type"))

	// Admin dispatches to the recipient.
	resp, env := doJSON(t, http.MethodPost, e.server.URL+"/api/v1/admin/notifications/send", signToken(t, adminUser.ID, true), dto.SendNotificationRequest{
		Title:        "hello",
		Body:         "world",
		RecipientIDs: []int64{alice.ID},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)

	// The event arrives on the stream.
	data, err := readSSEData(streamResp.Body, 2*time.Second)
	require.NoError(t, err)

	var event model.RealtimeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	require.Equal(t, "hello", event.Title)
	require.Equal(t, "world", event.Body)
	require.NotZero(t, event.NotificationID)
}

func TestInboxLifecycleFlow(t *testing.T) {
	e := setupEnv(t)
	adminUser := e.store.SeedUser(model.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true})
	alice := e.store.SeedUser(model.User{Name: "Alice", Email: "alice@example.com"})
	adminToken := signToken(t, adminUser.ID, true)
	aliceToken := signToken(t, alice.ID, false)

	resp, env := doJSON(t, http.MethodPost, e.server.URL+"/api/v1/admin/notifications/send-all", adminToken, dto.SendAllNotificationRequest{
		Title: "broadcast",
		Body:  "to everyone",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "Notification sent to all users", env.Message)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var sent model.DispatchResult
	require.NoError(t, json.Unmarshal(data, &sent))
	require.Equal(t, 1, sent.RecipientsCount)

	// The recipient sees it in the inbox with unread state.
	resp, env = doJSON(t, http.MethodGet, e.server.URL+"/api/v1/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listData, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var page model.Page[model.InboxItem]
	require.NoError(t, json.Unmarshal(listData, &page))
	require.Len(t, page.Data, 1)
	require.False(t, page.Data[0].Read)
	require.Equal(t, "broadcast", page.Data[0].Notification.Title)
	require.Equal(t, "Admin", page.Data[0].Notification.Sender.Name)

	// Read it, verify the admin-side stats reflect the transition.
	notifID := page.Data[0].NotificationID
	resp, _ = doJSON(t, http.MethodPut, e.server.URL+"/api/v1/notifications/"+itoa(notifID)+"/read", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, http.MethodGet, e.server.URL+"/api/v1/admin/notifications/"+itoa(notifID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detailData, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var detail model.NotificationDetail
	require.NoError(t, json.Unmarshal(detailData, &detail))
	require.Equal(t, model.NotificationStats{TotalRecipients: 1, ReadCount: 1, UnreadCount: 0}, detail.Stats)

	// Admin deletes, inbox item disappears.
	resp, _ = doJSON(t, http.MethodDelete, e.server.URL+"/api/v1/admin/notifications/"+itoa(notifID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, http.MethodGet, e.server.URL+"/api/v1/notifications/"+itoa(notifID), aliceToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, env.Success)
	require.Equal(t, "Notification not found", env.Message)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func readSSEData(body io.Reader, timeout time.Duration) (string, error) {
	reader := bufio.NewReader(body)
	type result struct {
		data string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		var dataLines []string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				ch <- result{"", err}
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				if len(dataLines) > 0 {
					ch <- result{strings.Join(dataLines, "\n"), nil}
					return
				}
				continue
			}
			if strings.HasPrefix(line, ":") {
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			}
		}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-time.After(timeout):
		return "", context.DeadlineExceeded
	}
}
