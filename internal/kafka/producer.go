package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// Producer publishes ledger events to Kafka. Publishing is best-effort:
// handlers log failures but never fail the request over them.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeExecuted publishes a buy or sell event
func (p *Producer) PublishTradeExecuted(ctx context.Context, userID, ticker, tradeType string, amount, shares decimal.Decimal) error {
	event := models.LedgerEvent{
		EventType: tradeType,
		UserID:    userID,
		Ticker:    ticker,
		Amount:    amount,
		Shares:    shares,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

// PublishChoreApproved publishes a chore reward credit
func (p *Producer) PublishChoreApproved(ctx context.Context, userID string, reward decimal.Decimal) error {
	event := models.LedgerEvent{
		EventType: "CHORE_APPROVED",
		UserID:    userID,
		Amount:    reward,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

// PublishCashOutReviewed publishes a cash-out approval or rejection
func (p *Producer) PublishCashOutReviewed(ctx context.Context, userID, status string, amount decimal.Decimal) error {
	event := models.LedgerEvent{
		EventType: "CASH_OUT_REVIEWED",
		UserID:    userID,
		Amount:    amount,
		Status:    status,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

// PublishPriceUpdated publishes a new daily price observation
func (p *Producer) PublishPriceUpdated(ctx context.Context, ticker string, price decimal.Decimal) error {
	event := models.LedgerEvent{
		EventType: "PRICE_UPDATED",
		Ticker:    ticker,
		Amount:    price,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, ticker, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
