package service

import (
	"context"

	"github.com/khoahotran/superleader/internal/domain/event"
)

type EventPublisher interface {
	Publish(ctx context.Context, evt event.Event)
}
