package pkg

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaProducer 同步写，按 key 哈希分区，同一 key 的事件保持顺序
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: w, topic: cfg.Topic}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *KafkaProducer) Topic() string { return p.topic }

// Send 发送一条事件，headers 为空时不附带
func (p *KafkaProducer) Send(ctx context.Context, key string, value []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return p.writer.WriteMessages(ctx, msg)
}

func MakeKeyFromID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
