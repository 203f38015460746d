// Package fanout 实现客服消息的实时推送层
// kafka_broker.go
// 核心职责：分布式模式下的实时推送实现
// 1. 作为 Kafka 消费者，从消息队列读取全量事件
// 2. 维护本机在线客服端连接 (Kafka 模式)
// 3. 将事件按订阅状态分发给本机的客服端
package fanout

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"live_support_server/internal/config"
	"live_support_server/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// KafkaFanout 定义基于 Kafka 的推送服务结构
type KafkaFanout struct {
	// Clients 存储本机在线客服端的映射表，Key 为 clientId，Value 为 *DashboardConn
	// 使用 sync.Map 实现并发安全，无需手动加锁
	Clients sync.Map
	// Login 客服端上线通道，当有新连接建立时写入此通道
	Login chan *DashboardConn
	// Logout 客服端下线通道，当连接断开时写入此通道
	Logout chan *DashboardConn
}

// NewKafkaFanout 创建 KafkaFanout 实例
func NewKafkaFanout() *KafkaFanout {
	return &KafkaFanout{
		Login:  make(chan *DashboardConn, constants.CHANNEL_SIZE),
		Logout: make(chan *DashboardConn, constants.CHANNEL_SIZE),
	}
}

// Start 启动 Kafka 消费者服务
// 该方法包含两个主要部分的并发逻辑：
// 1. 事件消费循环 (Goroutine): 从 Kafka 读取事件 -> 按订阅状态分发给本机客服端
// 2. 客户端管理循环 (Main Loop): 处理客服端的上线和下线事件，维护 Clients 映射表
func (k *KafkaFanout) Start() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("kafka fanout panic: %v", r))
		}
	}()

	// 启动一个 Goroutine 专门负责从 Kafka 读取事件
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error(fmt.Sprintf("kafka fanout panic: %v", r))
			}
		}()
		for {
			kafkaMessage, err := GlobalKafkaClient.Consumer.ReadMessage(ctx)
			if err != nil {
				zap.L().Error(err.Error())
				continue // 读取失败，重试
			}
			zap.L().Debug(fmt.Sprintf("topic=%s, partition=%d, offset=%d", kafkaMessage.Topic, kafkaMessage.Partition, kafkaMessage.Offset))
			dispatchToClients(&k.Clients, kafkaMessage.Value)
		}
	}()

	// 主循环：负责处理客服端的上线和下线事件
	for {
		select {
		case client, ok := <-k.Login:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			k.Clients.Store(client.Uuid, client)
			zap.L().Debug(fmt.Sprintf("客服端%s已上线\n", client.Uuid))
			if err := client.Conn.WriteMessage(websocket.TextMessage, []byte("已连接客服推送服务")); err != nil {
				zap.L().Error(err.Error())
			}

		case client, ok := <-k.Logout:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			// 先移出映射表再关闭事件队列，消费协程对已下线连接的投递会被丢弃
			k.Clients.Delete(client.Uuid)
			client.closeSend()
			zap.L().Info(fmt.Sprintf("客服端%s已下线\n", client.Uuid))
		}
	}
}

// Close 关闭服务通道和 Kafka 资源
func (k *KafkaFanout) Close() {
	close(k.Login)
	close(k.Logout)
	if GlobalKafkaClient != nil {
		GlobalKafkaClient.KafkaClose()
	}
}

// GetClient 获取客服端连接
func (k *KafkaFanout) GetClient(clientId string) *DashboardConn {
	value, ok := k.Clients.Load(clientId)
	if !ok {
		return nil
	}
	return value.(*DashboardConn)
}

// Publish 实现 MessageBroker 接口：发布事件到 Kafka
func (k *KafkaFanout) Publish(ctx context.Context, msg []byte) error {
	key := []byte(strconv.Itoa(config.GetConfig().KafkaConfig.Partition))
	return GlobalKafkaClient.SendMessage(ctx, key, msg)
}

// RegisterClient 实现 MessageBroker 接口：注册客服端
func (k *KafkaFanout) RegisterClient(client *DashboardConn) {
	k.Login <- client
}

// UnregisterClient 实现 MessageBroker 接口：注销客服端
func (k *KafkaFanout) UnregisterClient(client *DashboardConn) {
	k.Logout <- client
}

// 确保 KafkaFanout 实现了 MessageBroker 接口
var _ MessageBroker = (*KafkaFanout)(nil)
