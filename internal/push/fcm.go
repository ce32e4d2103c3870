package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"notify_hub/internal/config"
)

type fcmGateway struct {
	client *messaging.Client
	log    *zap.Logger
}

// NewGateway builds the FCM-backed gateway. Without credentials it degrades
// to a no-op gateway so local runs and tests work without a Firebase project.
func NewGateway(cfg *config.Config, logger *zap.Logger) (Gateway, error) {
	if cfg.FirebaseCredentials == "" {
		logger.Warn("firebase credentials not configured, push delivery is a no-op")
		return &noopGateway{log: logger}, nil
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentials))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return &fcmGateway{client: client, log: logger}, nil
}

func (g *fcmGateway) SendToToken(ctx context.Context, token, title, body string, data map[string]string) Result {
	msg := &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	if _, err := g.client.Send(ctx, msg); err != nil {
		return Result{Outcome: classify(err), Err: err}
	}
	return Result{Outcome: OutcomeOK}
}

func (g *fcmGateway) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (MulticastResult, error) {
	if len(tokens) == 0 {
		return MulticastResult{}, nil
	}

	msg := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	batch, err := g.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		g.log.Error("fcm multicast failed", zap.Int("tokens", len(tokens)), zap.Error(err))
		return MulticastResult{FailureCount: len(tokens)}, err
	}

	result := MulticastResult{
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
	}
	for i, resp := range batch.Responses {
		if resp.Success {
			continue
		}
		result.Failures = append(result.Failures, TokenFailure{
			Token:   tokens[i],
			Outcome: classify(resp.Error),
			Err:     resp.Error,
		})
	}
	return result, nil
}

// classify maps a gateway error to an enumerated outcome. The SDK helpers
// cover structured FCM errors; the substring checks catch token problems
// surfaced only through the error message.
func classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	switch {
	case messaging.IsUnregistered(err), messaging.IsInvalidArgument(err):
		return OutcomeInvalidToken
	case messaging.IsSenderIDMismatch(err), messaging.IsThirdPartyAuthError(err):
		return OutcomePermanent
	case messaging.IsUnavailable(err), messaging.IsInternal(err), messaging.IsQuotaExceeded(err):
		return OutcomeTransient
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNREGISTERED"),
		strings.Contains(msg, "INVALID_ARGUMENT"),
		strings.Contains(msg, "not a valid FCM registration token"):
		return OutcomeInvalidToken
	}
	return OutcomeTransient
}

type noopGateway struct {
	log *zap.Logger
}

func (g *noopGateway) SendToToken(_ context.Context, _, title, _ string, _ map[string]string) Result {
	g.log.Debug("noop push send", zap.String("title", title))
	return Result{Outcome: OutcomeOK}
}

func (g *noopGateway) SendMulticast(_ context.Context, tokens []string, _, _ string, _ map[string]string) (MulticastResult, error) {
	return MulticastResult{SuccessCount: len(tokens)}, nil
}
