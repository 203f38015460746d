// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"live_support_server/internal/handler"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	// WebSocket 连接入口
	// 客服端通过此路由建立 WebSocket 连接，接收实时推送
	// 请求示例: ws://host:port/wss?client_id=xxx
	r.GET("/wss", handler.WsLoginHandler)

	// WebSocket 登出
	r.POST("/wsLogout", handler.WsLogoutHandler)
}
