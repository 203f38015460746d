// Package fanout 实现客服消息的实时推送层
// kafka_client.go
// 核心职责：Kafka 基础设施管理
// 1. 封装 Kafka 底层连接 (Writer/Reader)
// 2. 提供事件写入接口 (SendMessage)
// 3. 负责 Kafka 资源的初始化和关闭
// 4. 纯技术组件，不包含客服业务逻辑
package fanout

import (
	"context"
	"time"

	myconfig "live_support_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaClient Kafka 客户端结构
type KafkaClient struct {
	Producer *kafka.Writer // 生产者：负责写入事件
	Consumer *kafka.Reader // 消费者：负责读取事件
}

// NewKafkaClient 创建 Kafka 客户端实例
func NewKafkaClient() *KafkaClient {
	return &KafkaClient{}
}

// GlobalKafkaClient 全局 Kafka 客户端实例（Kafka 模式下使用）
var GlobalKafkaClient *KafkaClient

// KafkaInit 初始化 Kafka 客户端
func (k *KafkaClient) KafkaInit() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig
	k.Producer = &kafka.Writer{
		Addr:                   kafka.TCP(kafkaConfig.HostPort),
		Topic:                  kafkaConfig.SupportTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaConfig.Timeout * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	k.Consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{kafkaConfig.HostPort},
		Topic:          kafkaConfig.SupportTopic,
		CommitInterval: kafkaConfig.Timeout * time.Second,
		GroupID:        "live_support",
		StartOffset:    kafka.LastOffset,
	})
}

// KafkaClose 关闭 Kafka 连接
func (k *KafkaClient) KafkaClose() {
	if err := k.Producer.Close(); err != nil {
		zap.L().Error(err.Error())
	}
	if err := k.Consumer.Close(); err != nil {
		zap.L().Error(err.Error())
	}
}

// SendMessage 向 Kafka 写入一条事件
func (k *KafkaClient) SendMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}
