// Package notifications delivers user-facing messages (welcome, password
// recovery, reset confirmation) to an external notification service. Delivery
// is best effort: the calling flow never fails because a message did not go
// out.
package notifications

import (
	"context"

	"github.com/jrafaels/test-fauth/internal/server/models"
)

// Message is the payload posted to the notification service.
type Message struct {
	UserID          string `json:"user_id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	ControlPassword string `json:"control_password,omitempty"`
	IP              string `json:"ip,omitempty"`
}

// Dispatcher sends the three message types the flows produce.
type Dispatcher interface {
	// SendWelcome greets a freshly registered user.
	SendWelcome(ctx context.Context, user *models.User, ip string) error

	// SendRecovery delivers the control secret issued during password
	// recovery.
	SendRecovery(ctx context.Context, user *models.User, controlSecret, ip string) error

	// SendResetConfirmation tells the user their password was changed.
	SendResetConfirmation(ctx context.Context, user *models.User, ip string) error
}

// NopDispatcher drops every message. Used when no notification endpoint is
// configured and in tests.
type NopDispatcher struct{}

func (NopDispatcher) SendWelcome(ctx context.Context, user *models.User, ip string) error {
	return nil
}

func (NopDispatcher) SendRecovery(ctx context.Context, user *models.User, controlSecret, ip string) error {
	return nil
}

func (NopDispatcher) SendResetConfirmation(ctx context.Context, user *models.User, ip string) error {
	return nil
}
