// Package fanout 实现客服消息的实时推送层
// channel_broker.go
// 核心职责：单机模式下的实时推送实现
// 1. 维护在线客服端连接 (Channel 模式)
// 2. 将事件按订阅状态分发给各客服端
// 3. 管理客服端上线/下线事件
// 4. 不依赖外部消息队列，适合小规模或开发环境
package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"live_support_server/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StandaloneFanout 定义单机推送服务的核心结构
type StandaloneFanout struct {
	// Clients 存储所有在线客服端的映射表，Key 为 clientId，Value 为 *DashboardConn
	// 使用 sync.Map 实现并发安全，无需手动加锁
	Clients sync.Map
	// Transmit 事件转发通道，接收 Publish 写入的广播事件
	Transmit chan []byte
	// Login 客服端上线通道，当有新连接建立时写入此通道
	Login chan *DashboardConn
	// Logout 客服端下线通道，当连接断开时写入此通道
	Logout chan *DashboardConn
}

// NewStandaloneFanout 创建 StandaloneFanout 实例
func NewStandaloneFanout() *StandaloneFanout {
	return &StandaloneFanout{
		// sync.Map 零值即可用，无需显式初始化
		Transmit: make(chan []byte, constants.CHANNEL_SIZE),
		Login:    make(chan *DashboardConn, constants.CHANNEL_SIZE),
		Logout:   make(chan *DashboardConn, constants.CHANNEL_SIZE),
	}
}

// dispatchToClients 将事件分发给全部在线客服端
// 正在查看该会话的客服端收到原始事件（携带消息体），
// 其余客服端收到降级后的 session_refresh 事件，只提示刷新列表。
// 投递走 trySend：队列已满或连接已下线时直接丢弃该事件
func dispatchToClients(clients *sync.Map, data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		zap.L().Error(err.Error())
		return
	}

	// 降级事件只保留会话 ID
	refresh, err := json.Marshal(Event{Kind: EventSessionRefresh, SessionId: ev.SessionId})
	if err != nil {
		zap.L().Error(err.Error())
		return
	}

	clients.Range(func(_, value any) bool {
		client := value.(*DashboardConn)
		payload := refresh
		if client.Watching() == ev.SessionId {
			payload = data
		}
		client.trySend(payload)
		return true
	})
}

// Start 启动 Channel 模式主循环
// 该方法包含两个主要部分的并发逻辑：
// 1. 事件消费循环 (Transmit channel): 接收事件 -> 按订阅状态分发给各客服端
// 2. 客户端管理循环 (Login/Logout channels): 处理客服端的上线和下线事件，维护 Clients 映射表
func (s *StandaloneFanout) Start() {
	for {
		select {
		// 处理客服端上线事件
		case client, ok := <-s.Login:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			// 将新连接的客服端加入映射表 (sync.Map 自动处理并发安全)
			s.Clients.Store(client.Uuid, client)
			zap.L().Debug(fmt.Sprintf("客服端%s已上线\n", client.Uuid))
			if err := client.Conn.WriteMessage(websocket.TextMessage, []byte("已连接客服推送服务")); err != nil {
				zap.L().Error(err.Error())
			}

		// 处理客服端下线事件
		case client, ok := <-s.Logout:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			// 先移出映射表再关闭事件队列，后续事件不会再投递给该连接
			s.Clients.Delete(client.Uuid)
			client.closeSend()
			zap.L().Info(fmt.Sprintf("客服端%s已下线\n", client.Uuid))

		// 处理事件分发（这是核心的推送循环）
		case data, ok := <-s.Transmit:
			if !ok {
				return
			}
			dispatchToClients(&s.Clients, data)
		}
	}
}

// Close 关闭服务通道
func (s *StandaloneFanout) Close() {
	close(s.Login)
	close(s.Logout)
	close(s.Transmit)
}

// GetClient 获取客服端连接
func (s *StandaloneFanout) GetClient(clientId string) *DashboardConn {
	value, ok := s.Clients.Load(clientId)
	if !ok {
		return nil
	}
	return value.(*DashboardConn)
}

// Publish 实现 MessageBroker 接口：发布事件到 Channel
func (s *StandaloneFanout) Publish(ctx context.Context, msg []byte) error {
	s.Transmit <- msg
	return nil
}

// RegisterClient 实现 MessageBroker 接口：注册客服端
func (s *StandaloneFanout) RegisterClient(client *DashboardConn) {
	s.Login <- client
}

// UnregisterClient 实现 MessageBroker 接口：注销客服端
func (s *StandaloneFanout) UnregisterClient(client *DashboardConn) {
	s.Logout <- client
}

// 确保 StandaloneFanout 实现了 MessageBroker 接口
var _ MessageBroker = (*StandaloneFanout)(nil)
