// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"live_support_server/internal/handler"
	"live_support_server/internal/infrastructure/middleware"
)

// Router 路由管理器
// 持有 Handler 聚合实例，各子模块的路由注册方法挂在此结构上
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 按模块分别注册各个路由组
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	// 需要认证的接口统一走 JWT 中间件
	authGroup := r.Group("")
	authGroup.Use(middleware.JWTAuth())
	{
		rt.RegisterSupportRoutes(authGroup) // 客服工作台路由
		rt.RegisterMessageRoutes(authGroup) // 访客端消息路由
	}

	// WebSocket 连接入口不走 JWT 中间件
	// 浏览器的 WebSocket API 无法自定义请求头，身份通过 client_id 查询参数传递
	rt.RegisterWebSocketRoutes(r)
}
