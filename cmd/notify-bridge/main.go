// notify-bridge consumes request lifecycle events from Redis and forwards
// status resolutions to the admin Telegram chat. It runs beside the API so
// slow Telegram calls never sit on the request path.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecop-onboarding/backend/internal/config"
	"github.com/ecop-onboarding/backend/internal/db"
	"github.com/ecop-onboarding/backend/internal/events"
	"github.com/ecop-onboarding/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	notifier := services.NewTelegramNotifier(cfg.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramChatID, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	err = subscriber.Subscribe(ctx, events.StreamRequests, func(event events.Event) {
		if event.Type != events.EventRequestStatusChanged {
			return
		}

		requestType, _ := event.Payload["request_type"].(string)
		requestID, _ := event.Payload["request_id"].(string)
		address, _ := event.Payload["address"].(string)
		oldStatus, _ := event.Payload["old_status"].(string)
		newStatus, _ := event.Payload["new_status"].(string)
		if requestType == "" || requestID == "" {
			log.Warn("malformed status change event", zap.Any("payload", event.Payload))
			return
		}

		notifier.Notify(ctx, services.FormatStatusChanged(requestType, requestID, address, oldStatus, newStatus))
	})
	if err != nil {
		log.Fatal("failed to subscribe", zap.Error(err))
	}

	log.Info("notify bridge started", zap.String("stream", events.StreamRequests))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down...")
	cancel()
}
