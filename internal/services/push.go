package services

import (
	"context"
	"errors"
)

type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type PushResult struct {
	MessageID string
}

// Pusher delivers a message to one device. An error means the message was
// not accepted by the provider.
type Pusher interface {
	Push(ctx context.Context, msg PushMessage) (PushResult, error)
}

var ErrPushDisabled = errors.New("push delivery is not configured")

type NoopPusher struct{}

func (NoopPusher) Push(context.Context, PushMessage) (PushResult, error) {
	return PushResult{}, ErrPushDisabled
}
