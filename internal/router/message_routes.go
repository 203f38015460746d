// Package router 提供 HTTP 路由注册
// 本文件定义访客端消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册访客端消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.POST("/send", rt.handlers.Message.SendVisitorMessage) // 访客发送消息
		messageGroup.POST("/list", rt.handlers.Message.GetSessionMessages) // 访客拉取消息记录
	}
}
