// Package kafka publishes audit events to a Kafka topic so downstream
// review tooling can consume the decision stream without polling the store.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"lottoledger/internal/audit"
)

// Publisher is an audit.Sink backed by franz-go. Events are produced
// synchronously; the audit publisher treats sink failures as best-effort.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	// One partition keeps the decision stream totally ordered, matching the
	// append-only offset semantics of the store.
	resp, err := adm.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic %q: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create audit topic %q: %w", topic, resp.Err)
	}

	return &Publisher{client: client, topic: topic}, nil
}

// Publish produces one event. The draw reference keys the record so replays
// of the same draw land on the same partition if the topic is ever expanded.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	payload, err := audit.MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Game + "/" + event.DrawRef),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (p *Publisher) Close() {
	p.client.Close()
}
