package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FirebasePusher struct {
	client *messaging.Client
}

// NewFirebasePusher builds an FCM client from a service account file, or
// from application default credentials when the path is empty.
func NewFirebasePusher(ctx context.Context, credentialsFile string) (*FirebasePusher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase messaging client: %w", err)
	}

	return &FirebasePusher{client: client}, nil
}

func (p *FirebasePusher) Push(ctx context.Context, msg PushMessage) (PushResult, error) {
	message := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:    "default",
				Priority: messaging.PriorityHigh,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: msg.Title,
						Body:  msg.Body,
					},
					Sound: "default",
				},
			},
		},
	}

	id, err := p.client.Send(ctx, message)
	if err != nil {
		return PushResult{}, fmt.Errorf("failed to send FCM message: %w", err)
	}

	return PushResult{MessageID: id}, nil
}
