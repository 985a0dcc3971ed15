package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"meridian/internal/models"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
	Subject   string
}

type NATSClient struct {
	conn    stan.Conn
	subject string
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	// unique client id so several replicas can share a cluster
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", uniqueClientID)

	return &NATSClient{conn: conn, subject: cfg.Subject}, nil
}

func (nc *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

// Forward is a bus listener relaying every event to the configured subject.
// Publish failures are logged and dropped.
func (nc *NATSClient) Forward(event models.AnalyticsEvent) {
	if err := nc.Publish(nc.subject, event); err != nil {
		slog.Error("Failed to forward event", "event", event.Name, "event_id", event.ID, "error", err)
	}
}

// Subscribe delivers decoded events from subject, starting with the last
// received message when replay is false and with the full history otherwise.
func (nc *NATSClient) Subscribe(subject string, replay bool, handler func(models.AnalyticsEvent)) (stan.Subscription, error) {
	start := stan.StartWithLastReceived()
	if replay {
		start = stan.DeliverAllAvailable()
	}

	sub, err := nc.conn.Subscribe(subject, func(msg *stan.Msg) {
		var event models.AnalyticsEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("Failed to decode event", "subject", subject, "sequence", msg.Sequence, "error", err)
			return
		}
		handler(event)
	}, start)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject)
	return sub, nil
}

func (nc *NATSClient) Subject() string {
	return nc.subject
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
