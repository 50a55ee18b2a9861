package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradsync/portal/internal/core/events"
)

// CredentialSource tells the poller whether a credential is installed; ticks
// without one skip the network entirely.
type CredentialSource interface {
	HasCredential() bool
}

// Poller refreshes the notification store on a fixed interval. Each Start
// owns its own ticker and goroutine, so concurrent activations are
// independently cancellable. Fetch failures are logged and swallowed; the
// next tick retries.
type Poller struct {
	service     *Service
	credentials CredentialSource
	interval    time.Duration
	bus         *events.EventBus
	logger      *slog.Logger
}

const DefaultInterval = 5 * time.Second

func NewPoller(service *Service, credentials CredentialSource, interval time.Duration, bus *events.EventBus, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		service:     service,
		credentials: credentials,
		interval:    interval,
		bus:         bus,
		logger:      logger,
	}
}

// Start performs one immediate refresh, then refreshes every interval until
// the returned stop function is called. Stop is idempotent.
func (p *Poller) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		p.tick(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.tick(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if p.credentials != nil && !p.credentials.HasCredential() {
		// nothing to do without a token; not an error
		return
	}

	if err := p.service.Refresh(ctx); err != nil {
		p.logger.Warn("notification poll failed, will retry next tick", "error", err)
		return
	}

	p.publishRefreshed(ctx)
}

func (p *Poller) publishRefreshed(ctx context.Context) {
	if p.bus == nil {
		return
	}
	event := events.New(events.TypeNotificationsRefreshed, map[string]interface{}{
		"unread_count": p.service.Store().UnreadCount(),
		"total":        p.service.Store().Len(),
	})
	if err := p.bus.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish refresh event", "error", err)
	}
}
