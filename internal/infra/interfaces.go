package infra

import "context"

type PushSender interface {
	SendPush(ctx context.Context, msg PushMessage) error
}

var _ PushSender = (*PushClient)(nil)
