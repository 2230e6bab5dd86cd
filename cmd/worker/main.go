package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/config"
	"github.com/suPer8Hu/ai-companion/internal/logging"
	"github.com/suPer8Hu/ai-companion/internal/store/rabbitmq"
)

const reportEvery = time.Minute

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.RabbitURL == "" {
		logger.Fatal("RABBIT_URL is required")
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		logger.Fatal("queue declare", zap.Error(err))
	}

	// strict concurrency control
	concurrency := cfg.WorkerConcurrency
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", zap.String("queue", cfg.RabbitQueue), zap.Int("concurrency", concurrency))

	tally := rabbitmq.NewTally()

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				ev, err := rabbitmq.DecodeTurnEvent(d.Body)
				if err != nil {
					logger.Warn("bad message", zap.Int("worker", workerID), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				tally.Add(ev)
				if err := d.Ack(false); err != nil {
					logger.Warn("ack failed", zap.Int("worker", workerID), zap.String("session_id", ev.SessionID), zap.Error(err))
				}
			}
		}(i)
	}

	ticker := time.NewTicker(reportEvery)
	defer ticker.Stop()

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			report(logger, tally)
			return

		case <-ticker.C:
			report(logger, tally)

		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				msgs = nil
				stop()
				continue
			}
			jobs <- d
		}
	}
}

func report(logger *zap.Logger, tally *rabbitmq.Tally) {
	for _, a := range tally.Snapshot() {
		logger.Info("activity",
			zap.String("key", a.Key),
			zap.Int("turns", a.Turns),
			zap.Int("commands", a.Commands),
			zap.Any("emotions", a.Emotions),
			zap.Time("last_seen", a.LastSeen),
		)
	}
}
