package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

// Pusher sends mobile push notifications.
type Pusher interface {
	// Push returns the tokens the provider reported as no longer registered.
	Push(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error)
}

type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(ctx context.Context, credentialsFile string) (*FCMPusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCMPusher{client: client}, nil
}

func (p *FCMPusher) Push(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	var stale []string
	var firstErr error
	for _, token := range tokens {
		_, err := p.client.Send(ctx, buildMessage(token, title, body, data))
		if err == nil {
			continue
		}
		if messaging.IsRegistrationTokenNotRegistered(err) {
			stale = append(stale, token)
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return stale, firstErr
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "orders",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}
}

// NoopPusher is used when no FCM credentials are configured.
type NoopPusher struct{}

func (NoopPusher) Push(context.Context, []string, string, string, map[string]string) ([]string, error) {
	return nil, nil
}
