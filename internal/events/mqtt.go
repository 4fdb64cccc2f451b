package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ukydev/shop-admin/internal/models"
)

var (
	ErrNoTrackingCode = errors.New("status update has no tracking code")
	ErrPublishTimeout = errors.New("mqtt publish timed out")
)

const publishTimeout = 5 * time.Second

// mqttClient is the subset of mqtt.Client used for publishing.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// MQTTPublisher publishes updates as JSON to <prefix>/<tracking code>.
type MQTTPublisher struct {
	client mqttClient
	prefix string
	qos    byte
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, nil, fmt.Errorf("connect to mqtt broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, err)
	}
	return newMQTTPublisher(client, cfg.TopicPrefix), client, nil
}

func newMQTTPublisher(client mqttClient, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(prefix, "/"), qos: 1}
}

// Topic returns the topic updates for trackingCode are published on.
func (p *MQTTPublisher) Topic(trackingCode string) string {
	if p.prefix == "" {
		return trackingCode
	}
	return p.prefix + "/" + trackingCode
}

func (p *MQTTPublisher) Publish(ctx context.Context, update models.StatusUpdate) error {
	if update.TrackingCode == "" {
		return ErrNoTrackingCode
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}

	token := p.client.Publish(p.Topic(update.TrackingCode), p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish status update: %w", err)
	}
	return nil
}
