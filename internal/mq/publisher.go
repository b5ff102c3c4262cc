package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/pokeflow/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypePokemonBatch   MessageType = "pokemon.batch"
	MessageTypeEvolutionBatch MessageType = "evolution.batch"
	MessageTypeTypeBatch      MessageType = "type.batch"
)

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка, разбирается через ParsePayload.
	Payload json.RawMessage `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// PokemonBatchPayload — payload для pokemon.batch.
type PokemonBatchPayload struct {
	Pokemon []domain.Pokemon `json:"pokemon"`
}

// EvolutionBatchPayload — payload для evolution.batch.
type EvolutionBatchPayload struct {
	Chains []domain.EvolutionChain `json:"evolution"`
}

// TypeBatchPayload — payload для type.batch.
type TypeBatchPayload struct {
	Types []domain.PokemonType `json:"types"`
}

// NewMessage создаёт сообщение с сериализованным payload.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
			"bytes", len(body),
		)

		return nil
	})
}

// PublishBatch публикует пакет в очередь ingest.pipeline.
func (p *Publisher) PublishBatch(ctx context.Context, msgType MessageType, payload any) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, ExchangeIngest, RoutingKeyIngest, msg)
}

// PublishPokemon публикует документы покемонов.
// Потребитель: Loader.
func (p *Publisher) PublishPokemon(ctx context.Context, pokemon []domain.Pokemon) error {
	return p.PublishBatch(ctx, MessageTypePokemonBatch, PokemonBatchPayload{Pokemon: pokemon})
}

// PublishEvolutions публикует цепочки эволюции.
// Потребитель: Loader.
func (p *Publisher) PublishEvolutions(ctx context.Context, chains []domain.EvolutionChain) error {
	return p.PublishBatch(ctx, MessageTypeEvolutionBatch, EvolutionBatchPayload{Chains: chains})
}

// PublishTypes публикует документы типов.
// Потребитель: Loader.
func (p *Publisher) PublishTypes(ctx context.Context, types []domain.PokemonType) error {
	return p.PublishBatch(ctx, MessageTypeTypeBatch, TypeBatchPayload{Types: types})
}
