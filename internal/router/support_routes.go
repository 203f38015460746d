// Package router 提供 HTTP 路由注册
// 本文件定义客服工作台相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSupportRoutes 注册客服工作台相关路由（需要认证）
// 包括会话列表、打开会话、回复、状态管理、删除等功能
func (rt *Router) RegisterSupportRoutes(rg *gin.RouterGroup) {
	supportGroup := rg.Group("/support")
	{
		supportGroup.GET("/listSessions", rt.handlers.Conversation.ListSessions)              // 获取会话摘要列表
		supportGroup.GET("/refresh", rt.handlers.Conversation.Refresh)                        // 绕过缓存强制刷新列表
		supportGroup.GET("/quickResponses", rt.handlers.Conversation.QuickResponses)          // 获取快捷回复模板
		supportGroup.POST("/openSession", rt.handlers.Conversation.OpenSession)               // 打开会话（清零未读）
		supportGroup.POST("/sendReply", rt.handlers.Conversation.SendReply)                   // 客服回复
		supportGroup.POST("/setStatus", rt.handlers.Conversation.SetStatus)                   // 设置会话状态
		supportGroup.POST("/deleteConversation", rt.handlers.Conversation.DeleteConversation) // 删除会话
	}
}
