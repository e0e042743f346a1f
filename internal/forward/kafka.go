// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package forward

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kazwalker/elmterm/internal/analyzer"
)

// KafkaConfig names the broker list and topic a KafkaSink publishes to.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaSink publishes annotation records to a Kafka topic, grounded on
// bingwumeihuo-car-gateway's internal/infra/kafka.KafkaProducer.
type KafkaSink struct {
	writer *kafka.Writer
	logger *zap.SugaredLogger
}

// NewKafkaSink constructs a Kafka producer. Connection happens lazily on
// first publish; construction itself never fails.
func NewKafkaSink(cfg KafkaConfig, logger *zap.SugaredLogger) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           5 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
	logger.Infow("kafka forward sink configured", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &KafkaSink{writer: w, logger: logger}
}

func (k *KafkaSink) Publish(ctx context.Context, a *analyzer.Annotation) error {
	body, err := marshal(a)
	if err != nil {
		return fmt.Errorf("forward: marshal annotation: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		k.logger.Warnw("kafka publish failed", "error", err)
		return err
	}
	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
