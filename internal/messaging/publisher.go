package messaging

import (
	"context"
	"strings"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/sirupsen/logrus"
)

// SubjectPrefix roots every change-event subject.
const SubjectPrefix = "tracking"

// Publisher announces committed writes.
type Publisher interface {
	Publish(ctx context.Context, event *models.ChangeEvent) error
	Close() error
}

// Subject returns tracking.<entity>.<action>, e.g. tracking.exchange_rate.created.
func Subject(entity, action string) string {
	return SubjectPrefix + "." + snake(entity) + "." + action
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NewPublisher connects to NATS when enabled and returns a NopPublisher
// otherwise.
func NewPublisher(cfg *config.NATSConfig, logger *logrus.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}
	nc, err := NewNATSClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return nc, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.ChangeEvent) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
