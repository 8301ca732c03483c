package publish

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Default connection behavior for the per-pass broker session.
const (
	defaultClientID       = "laundry-machine-mqtt"
	defaultKeepAlive      = 5 * time.Second
	defaultConnectTimeout = 5 * time.Second

	// DefaultDrainWindow bounds how long a pass waits on publish
	// acknowledgements before abandoning the connection.
	DefaultDrainWindow = 2 * time.Second
)

// Config holds broker connection parameters.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// DrainWindow overrides DefaultDrainWindow when positive.
	DrainWindow time.Duration
}

// MQTTPublisher publishes one batch of messages per sampling pass over a
// fresh broker connection. Publishing is best effort: failures are logged
// with topic context and never retried, and never fail the pass.
type MQTTPublisher struct {
	cfg    Config
	logger *slog.Logger

	// newClient is swappable for tests.
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

// NewMQTTPublisher creates a publisher for the given broker.
func NewMQTTPublisher(cfg Config, logger *slog.Logger) *MQTTPublisher {
	if cfg.DrainWindow <= 0 {
		cfg.DrainWindow = DefaultDrainWindow
	}
	return &MQTTPublisher{
		cfg:       cfg,
		logger:    logger,
		newClient: mqtt.NewClient,
	}
}

// Publish connects, fires every message at QoS 1 non-retained, then drains
// acknowledgement traffic on a background goroutine for at most the drain
// window before dropping the connection. The message slice is handed off
// read-only and must not be mutated by the caller afterwards.
func (p *MQTTPublisher) Publish(messages []Message) error {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", p.cfg.Host, p.cfg.Port)).
		SetClientID(defaultClientID).
		SetKeepAlive(defaultKeepAlive).
		SetConnectTimeout(defaultConnectTimeout).
		SetAutoReconnect(false)
	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}

	client := p.newClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("connect to %s:%d timed out", p.cfg.Host, p.cfg.Port)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s:%d: %w", p.cfg.Host, p.cfg.Port, err)
	}

	tokens := make([]mqtt.Token, 0, len(messages))
	for _, m := range messages {
		tokens = append(tokens, client.Publish(m.Topic, 1, false, m.Payload))
	}

	go p.drain(client, messages, tokens)

	return nil
}

// drain waits out the acknowledgement window, logging per-message results,
// then disconnects. The deadline is hard: unacknowledged messages are
// abandoned, not retried.
func (p *MQTTPublisher) drain(client mqtt.Client, messages []Message, tokens []mqtt.Token) {
	deadline := time.Now().Add(p.cfg.DrainWindow)

	for i, token := range tokens {
		remaining := time.Until(deadline)
		if remaining <= 0 || !token.WaitTimeout(remaining) {
			p.logger.Warn("Publish not acknowledged before deadline", "topic", messages[i].Topic)
			continue
		}
		if err := token.Error(); err != nil {
			p.logger.Error("Publish failed", "topic", messages[i].Topic, "error", err)
			continue
		}
		p.logger.Info("Published", "topic", messages[i].Topic, "payload", messages[i].Payload)
	}

	quiesce := time.Until(deadline).Milliseconds()
	if quiesce < 0 {
		quiesce = 0
	}
	client.Disconnect(uint(quiesce))
}
