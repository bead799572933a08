/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus over NATS so that
// cache invalidation reaches every node in a multi-instance deployment.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/resonance-stream/resonance/internal/events"
)

// subjectPrefix is the NATS subject root for bridged events. The event
// type is appended, e.g. "resonance.events.cache.track_updated".
const subjectPrefix = "resonance.events."

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL   string
	Token string

	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1, // Unlimited
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NATSBus implements a NATS-backed event bus. Local subscribers always
// go through the in-memory bus; NATS mirrors publishes across nodes.
// Falls back to in-memory only operation if NATS is unavailable.
type NATSBus struct {
	logger   zerolog.Logger
	fallback *events.Bus
	conn     *nats.Conn
	sub      *nats.Subscription
	nodeID   string
}

// NewNATSBus creates a NATS-backed event bus. An empty URL or a failed
// connection yields a single-node in-memory bus, not an error.
func NewNATSBus(cfg NATSConfig, logger zerolog.Logger) (*NATSBus, error) {
	log := logger.With().Str("component", "eventbus").Logger()

	nb := &NATSBus{
		logger:   log,
		fallback: events.NewBus(),
		nodeID:   generateNodeID(),
	}

	if cfg.URL == "" {
		log.Info().Msg("no NATS URL configured, using in-memory event bus")
		return nb, nil
	}

	opts := []nats.Option{
		nats.Name("resonance-" + nb.nodeID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		log.Warn().Err(err).Str("url", cfg.URL).Msg("NATS unavailable, using in-memory event bus")
		return nb, nil
	}
	nb.conn = conn

	// Wildcard subscription delivers every bridged event type.
	sub, err := conn.Subscribe(subjectPrefix+">", nb.handleRemote)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to %s>: %w", subjectPrefix, err)
	}
	nb.sub = sub

	log.Info().Str("url", cfg.URL).Str("node_id", nb.nodeID).Msg("NATS event bus connected")
	return nb, nil
}

// Subscribe registers a subscriber for an event type.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	return nb.fallback.Subscribe(eventType)
}

// Publish delivers locally and mirrors the event to NATS.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.fallback.Publish(eventType, payload)

	if nb.conn == nil {
		return
	}
	data, err := marshalNATSMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("marshal event failed")
		return
	}
	if err := nb.conn.Publish(subjectPrefix+string(eventType), data); err != nil {
		nb.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("NATS publish failed")
	}
}

// Unsubscribe removes a subscriber.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.fallback.Unsubscribe(eventType, sub)
}

// Close drains the NATS subscription and closes the connection.
func (nb *NATSBus) Close() error {
	if nb.conn == nil {
		return nil
	}
	if nb.sub != nil {
		if err := nb.sub.Drain(); err != nil {
			nb.logger.Warn().Err(err).Msg("drain subscription failed")
		}
	}
	nb.conn.Close()
	return nil
}

// handleRemote dispatches messages from other nodes to local
// subscribers. Messages published by this node are skipped since they
// were already delivered locally.
func (nb *NATSBus) handleRemote(m *nats.Msg) {
	msg, err := unmarshalNATSMessage(m.Data)
	if err != nil {
		nb.logger.Warn().Err(err).Str("subject", m.Subject).Msg("bad NATS message")
		return
	}
	if msg.NodeID == nb.nodeID {
		return
	}
	nb.fallback.Publish(msg.EventType, msg.Payload)
}

// natsMessage represents a message published to NATS.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"` // For deduplication
}

func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}

func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}
	return strings.ToLower(host) + "-" + uuid.NewString()[:8]
}
