// Package fanout 实现客服消息的实时推送层
// conn_manager.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 DashboardConn 对象，管理读写协程 (Read/Write Loop)
// 3. 通过 MessageBroker 接口解耦事件投递逻辑
package fanout

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"live_support_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// watchCommand 客服端通过 WebSocket 上行的订阅指令
// {"type":"watch","session_id":"..."} 表示开始查看某个会话
// {"type":"unwatch"} 表示回到会话列表
type watchCommand struct {
	Type      string `json:"type"`
	SessionId string `json:"session_id"`
}

// DashboardConn 表示一个客服工作台的 WebSocket 连接
type DashboardConn struct {
	Conn     *websocket.Conn
	Uuid     string
	SendBack chan []byte // 推送给前端的事件队列

	mu       sync.RWMutex
	watching string // 当前正在查看的会话，空串表示未进入任何会话
	closed   bool   // SendBack 是否已关闭，只允许 Broker 置位
}

// 允许任何来源的连接，跨域检查交给上层 CORS 中间件
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var ctx = context.Background()

// Watching 返回当前正在查看的会话 ID
func (c *DashboardConn) Watching() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.watching
}

// setWatching 更新当前正在查看的会话 ID
func (c *DashboardConn) setWatching(sessionId string) {
	c.mu.Lock()
	c.watching = sessionId
	c.mu.Unlock()
}

// trySend 非阻塞投递事件
// 队列已满时直接丢弃，消费过慢的连接不能拖垮整条广播链路；
// 通道关闭后的投递同样丢弃，分发协程与下线处理并发时不会写入已关闭的通道
func (c *DashboardConn) trySend(payload []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.SendBack <- payload:
	default:
		zap.L().Warn("客服端推送队列已满，丢弃事件", zap.String("client", c.Uuid))
	}
}

// closeSend 关闭事件队列，幂等
// 只能由 Broker 在下线处理中调用，Write 协程随通道关闭退出
func (c *DashboardConn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.SendBack)
}

// Read 从 WebSocket 读取订阅指令并更新关注的会话
func (c *DashboardConn) Read() {
	zap.L().Info("ws read goroutine start")
	for {
		_, jsonMessage, err := c.Conn.ReadMessage()
		if err != nil {
			zap.L().Error(err.Error())
			return
		}
		var cmd watchCommand
		if err := json.Unmarshal(jsonMessage, &cmd); err != nil {
			zap.L().Error(err.Error())
			continue
		}
		switch cmd.Type {
		case "watch":
			c.setWatching(cmd.SessionId)
		case "unwatch":
			c.setWatching("")
		}
	}
}

// Write 从 SendBack 通道读取事件并发送给 WebSocket
func (c *DashboardConn) Write() {
	zap.L().Info("ws write goroutine start")
	for data := range c.SendBack {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			zap.L().Error(err.Error())
			return
		}
	}
}

// NewDashboardInit 当客服端建立 WebSocket 连接时调用
func NewDashboardInit(c *gin.Context, clientId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	client := &DashboardConn{
		Conn:     conn,
		Uuid:     clientId,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}
	// 通过接口注册客服端连接
	GlobalBroker.RegisterClient(client)
	go client.Read()
	go client.Write()
	zap.L().Info("ws连接成功")
}

// DashboardLogout 当客服端断开连接时调用
// SendBack 由 Broker 在处理下线事件时关闭，这里只负责关闭底层连接
func DashboardLogout(clientId string) error {
	client := GlobalBroker.GetClient(clientId)
	if client != nil {
		GlobalBroker.UnregisterClient(client)
		if err := client.Conn.Close(); err != nil {
			zap.L().Error(err.Error())
			return err
		}
	}
	return nil
}
