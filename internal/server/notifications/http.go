package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jrafaels/test-fauth/internal/logging"
	"github.com/jrafaels/test-fauth/internal/server/models"
)

const defaultTimeout = 5 * time.Second

// HTTPDispatcher posts messages as JSON to a notification service.
type HTTPDispatcher struct {
	endpoint string
	paths    Paths
	client   *http.Client
	logger   logging.Logger
}

// Paths holds the service-relative paths for each message type.
type Paths struct {
	Welcome string
	Recover string
	Reset   string
}

func NewHTTPDispatcher(endpoint string, paths Paths, logger logging.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{
		endpoint: endpoint,
		paths:    paths,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   logger.With("module", "notifications"),
	}
}

func (d *HTTPDispatcher) SendWelcome(ctx context.Context, user *models.User, ip string) error {
	return d.post(ctx, d.paths.Welcome, &Message{
		UserID:   user.ID,
		FullName: user.FullName(),
		Email:    user.Email,
		IP:       ip,
	})
}

func (d *HTTPDispatcher) SendRecovery(ctx context.Context, user *models.User, controlSecret, ip string) error {
	return d.post(ctx, d.paths.Recover, &Message{
		UserID:          user.ID,
		FullName:        user.FullName(),
		Email:           user.Email,
		ControlPassword: controlSecret,
		IP:              ip,
	})
}

func (d *HTTPDispatcher) SendResetConfirmation(ctx context.Context, user *models.User, ip string) error {
	return d.post(ctx, d.paths.Reset, &Message{
		UserID:   user.ID,
		FullName: user.FullName(),
		Email:    user.Email,
		IP:       ip,
	})
}

func (d *HTTPDispatcher) post(ctx context.Context, path string, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn(ctx, "notification delivery failed", "path", path, "error", err.Error())
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Warn(ctx, "notification rejected", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}
	return nil
}
