// Package fanout 实现客服消息的实时推送层
// broker.go
// 核心职责：定义消息代理接口和推送事件结构
// 抽象消息发布和客户端管理，支持 Kafka 和 Channel 两种实现
package fanout

import (
	"context"

	"live_support_server/internal/dto/respond"
)

// 推送事件类型
const (
	// EventMessageAppend 新消息事件，携带完整消息体
	EventMessageAppend = "message_append"
	// EventSessionRefresh 会话列表刷新事件，提示客服端重新拉取列表
	EventSessionRefresh = "session_refresh"
)

// Event 实时推送事件
// 所有客服消息走同一条广播通道，由 Broker 根据订阅者关注的会话决定投递形态：
// 正在查看该会话的订阅者收到携带消息体的 message_append，
// 其他订阅者收到轻量的 session_refresh，自行刷新会话列表
type Event struct {
	Kind      string                  `json:"kind"`
	SessionId string                  `json:"session_id"`
	Message   *respond.MessageRespond `json:"message,omitempty"`
}

// MessageBroker 定义消息代理接口
// 支持多种实现：KafkaFanout (分布式), StandaloneFanout (单机)
type MessageBroker interface {
	// Publish 发布事件到消息队列/通道
	Publish(ctx context.Context, msg []byte) error
	// RegisterClient 注册客服端连接
	RegisterClient(client *DashboardConn)
	// UnregisterClient 注销客服端连接
	UnregisterClient(client *DashboardConn)
	// GetClient 获取指定客服端的连接
	GetClient(clientId string) *DashboardConn
	// Start 启动事件消费循环
	Start()
	// Close 关闭代理资源
	Close()
}

// GlobalBroker 全局消息代理实例
// 在 main.go 中根据配置初始化为 KafkaFanout 或 StandaloneFanout
var GlobalBroker MessageBroker
