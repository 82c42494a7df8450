package messaging

import (
	"context"
	"testing"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/sirupsen/logrus"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		entity, action, want string
	}{
		{models.EntityAsset, models.ActionCreated, "tracking.asset.created"},
		{models.EntityExchangeRate, models.ActionUpdated, "tracking.exchange_rate.updated"},
		{models.EntityConfiguration, models.ActionDeleted, "tracking.configuration.deleted"},
	}
	for _, tt := range tests {
		if got := Subject(tt.entity, tt.action); got != tt.want {
			t.Errorf("Subject(%q, %q) = %q, want %q", tt.entity, tt.action, got, tt.want)
		}
	}
}

func TestNewPublisherDisabled(t *testing.T) {
	p, err := NewPublisher(&config.NATSConfig{Enabled: false}, logrus.New())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("got %T, want NopPublisher", p)
	}
	if err := p.Publish(context.Background(), &models.ChangeEvent{Entity: models.EntityAsset}); err != nil {
		t.Errorf("nop publish: %v", err)
	}
}
