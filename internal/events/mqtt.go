// Package events publishes discount lifecycle events to the MQTT broker so
// connected clients and the data-fetching layer can refetch.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const TypeDiscountAvailable = "discount_available"

type Event struct {
	Type       string    `json:"type"`
	DiscountID uuid.UUID `json:"discount_id"`
	At         time.Time `json:"at"`
}

func Topic(discountID uuid.UUID) string {
	return fmt.Sprintf("discounts/%s/events", discountID)
}

var messagePubHandler mqtt.MessageHandler = func(client mqtt.Client, msg mqtt.Message) {
	log.Debug().Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("unexpected mqtt message")
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

type Publisher struct {
	client mqtt.Client
	qos    byte
}

func NewPublisher(client mqtt.Client) *Publisher {
	return &Publisher{client: client, qos: 1}
}

// Connect dials brokerURL and returns a publisher that reconnects on its own.
func Connect(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(messagePubHandler)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return NewPublisher(client), nil
}

// DiscountAvailable announces that a discount's window just opened.
func (p *Publisher) DiscountAvailable(ctx context.Context, discountID uuid.UUID, at time.Time) error {
	return p.publish(ctx, Event{Type: TypeDiscountAvailable, DiscountID: discountID, At: at})
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	topic := Topic(ev.DiscountID)
	token := p.client.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	log.Debug().Str("topic", topic).Str("type", ev.Type).Msg("event published")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Discard drops every event. Used when no broker is configured.
type Discard struct{}

func (Discard) DiscountAvailable(context.Context, uuid.UUID, time.Time) error { return nil }
