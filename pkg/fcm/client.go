// Package fcm delivers push notifications through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const clickAction = "FLUTTER_NOTIFICATION_CLICK"

// Message is a notification addressed to one device token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Client sends FCM messages.
type Client struct {
	sender sender
}

// NewClient initializes a Firebase app from service account credentials.
func NewClient(ctx context.Context, cfg config.FirebaseConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("firebase credentials are required")
	}
	var opt option.ClientOption
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opt = option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))
	} else {
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, appCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	msg, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase messaging: %w", err)
	}
	return &Client{sender: msg}, nil
}

// Send pushes a single message and returns the FCM message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c == nil || c.sender == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "fcm client not configured")
	}
	if strings.TrimSpace(msg.Token) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "device token is required")
	}

	id, err := c.sender.Send(ctx, buildMessage(msg))
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return "", pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "device token no longer registered")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fcm send")
	}
	return id, nil
}

func buildMessage(msg Message) *messaging.Message {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["click_action"] = clickAction
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	}
}
