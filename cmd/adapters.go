package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caravanleads/caravan/internal/domain"
)

// loggingChannelAdapter is a thin stand-in for the provider HTTP
// adapters and object-storage backend this project does not implement.
// It satisfies queue.OutboundSender/OperatorSender/CrewSender/
// MediaFetcher/ObjectStore by logging what a real adapter would send or
// store, so `caravan worker` links and runs end to end without a live
// Twilio/Meta/Telegram/S3 credential set.
type loggingChannelAdapter struct {
	logger *slog.Logger
}

func newLoggingChannelAdapter(logger *slog.Logger) *loggingChannelAdapter {
	return &loggingChannelAdapter{logger: logger}
}

func (a *loggingChannelAdapter) Send(ctx context.Context, msg domain.OutboundMessage) error {
	a.logger.Info("outbound message", "tenant_id", msg.TenantID, "chat_id", msg.ChatID, "text", msg.Text)
	return nil
}

func (a *loggingChannelAdapter) SendOperatorMessage(ctx context.Context, tenantID, text string) error {
	a.logger.Info("operator message", "tenant_id", tenantID, "text", text)
	return nil
}

func (a *loggingChannelAdapter) SendCrewMessage(ctx context.Context, tenantID, text string) error {
	a.logger.Info("crew message", "tenant_id", tenantID, "text", text)
	return nil
}

func (a *loggingChannelAdapter) Fetch(ctx context.Context, provider domain.Provider, sourceRef string) ([]byte, string, error) {
	return nil, "", fmt.Errorf("loggingChannelAdapter: no media fetcher configured for provider %s", provider)
}

func (a *loggingChannelAdapter) Put(ctx context.Context, key string, data []byte, contentType string) error {
	a.logger.Info("object store put", "key", key, "bytes", len(data), "content_type", contentType)
	return nil
}

func (a *loggingChannelAdapter) Delete(ctx context.Context, key string) error {
	a.logger.Info("object store delete", "key", key)
	return nil
}
