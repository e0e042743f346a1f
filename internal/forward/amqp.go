// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package forward

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/kazwalker/elmterm/internal/analyzer"
)

// AMQPConfig names the broker URL and exchange an AMQPSink publishes to.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// AMQPSink publishes annotation records to an AMQP topic exchange,
// grounded on bingwumeihuo-car-gateway's internal/infra/rabbitmq
// producer, trimmed to the connect-publish-reconnect shape without its
// queue/binding setup since elmterm only ever publishes, never
// consumes.
type AMQPSink struct {
	cfg    AMQPConfig
	logger *zap.SugaredLogger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPSink returns a sink that connects lazily on first publish.
func NewAMQPSink(cfg AMQPConfig, logger *zap.SugaredLogger) *AMQPSink {
	logger.Infow("amqp forward sink configured", "exchange", cfg.Exchange)
	return &AMQPSink{cfg: cfg, logger: logger}
}

func (a *AMQPSink) ensureChannel() (*amqp.Channel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ch != nil && !a.ch.IsClosed() {
		return a.ch, nil
	}

	conn, err := amqp.DialConfig(a.cfg.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("forward: amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("forward: amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(a.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("forward: amqp exchange declare: %w", err)
	}

	a.conn, a.ch = conn, ch
	return ch, nil
}

func (a *AMQPSink) Publish(ctx context.Context, ann *analyzer.Annotation) error {
	ch, err := a.ensureChannel()
	if err != nil {
		a.logger.Warnw("amqp publish skipped, no channel", "error", err)
		return err
	}

	body, err := marshal(ann)
	if err != nil {
		return fmt.Errorf("forward: marshal annotation: %w", err)
	}

	routingKey := "elmterm.annotation"
	err = ch.PublishWithContext(ctx, a.cfg.Exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		a.logger.Warnw("amqp publish failed", "error", err)
		return err
	}
	return nil
}

func (a *AMQPSink) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch != nil {
		a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
