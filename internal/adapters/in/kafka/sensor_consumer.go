// Package kafka consumes sensor readings from a Kafka topic and applies them
// to storage ledgers.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/domain/model/kernel"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReadingApplier is satisfied by commands.ApplySensorReadingCommandHandler.
type ReadingApplier interface {
	Handle(ctx context.Context, cmd commands.ApplySensorReadingCommand) (bool, error)
}

// SensorReading is the message body published by site sensors.
type SensorReading struct {
	SiteID    string          `json:"siteId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Timestamp time.Time       `json:"timestamp"`
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type SensorConsumer struct {
	reader  messageReader
	applier ReadingApplier
	logger  *slog.Logger
}

func NewSensorConsumer(cfg ConsumerConfig, applier ReadingApplier, logger *slog.Logger) *SensorConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
	return NewSensorConsumerWithReader(reader, applier, logger)
}

func NewSensorConsumerWithReader(reader messageReader, applier ReadingApplier, logger *slog.Logger) *SensorConsumer {
	return &SensorConsumer{
		reader:  reader,
		applier: applier,
		logger:  logger.With("component", "sensor_consumer"),
	}
}

// Run reads until ctx is cancelled. Every fetched message is committed once
// handled, including the ones that could not be applied, so a bad reading
// never blocks the partition.
func (c *SensorConsumer) Run(ctx context.Context) error {
	c.logger.Info("sensor consumer started")
	defer c.logger.Info("sensor consumer stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch sensor reading: %w", err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit sensor reading",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *SensorConsumer) Close() error {
	return c.reader.Close()
}

func (c *SensorConsumer) handle(ctx context.Context, msg kafka.Message) {
	log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)

	cmd, err := parseReading(msg.Value)
	if err != nil {
		log.Warn("skipping malformed sensor reading", "error", err)
		return
	}

	applied, err := c.applier.Handle(ctx, cmd)
	if err != nil {
		log.Error("failed to apply sensor reading", "site_id", cmd.SiteID().String(), "error", err)
		return
	}
	if !applied {
		log.Debug("stale sensor reading ignored", "site_id", cmd.SiteID().String(), "at", cmd.At())
		return
	}
	log.Info("sensor reading applied",
		"site_id", cmd.SiteID().String(), "quantity", cmd.Quantity().String(), "at", cmd.At())
}

func parseReading(body []byte) (commands.ApplySensorReadingCommand, error) {
	var reading SensorReading
	if err := json.Unmarshal(body, &reading); err != nil {
		return commands.ApplySensorReadingCommand{}, fmt.Errorf("decode: %w", err)
	}
	if reading.SiteID == "" {
		return commands.ApplySensorReadingCommand{}, errors.New("siteId is required")
	}

	siteID, err := kernel.UUIDFromString(reading.SiteID)
	if err != nil {
		return commands.ApplySensorReadingCommand{}, err
	}
	// Sensors drift below zero on an empty silo; the ledger is floored at 0.
	quantity := kernel.FlooredQuantity(reading.Quantity)

	return commands.NewApplySensorReadingCommand(siteID, quantity, reading.Timestamp)
}
