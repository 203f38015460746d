// Package handler 提供 HTTP 请求处理器
// 本文件处理访客端消息相关的 API 请求
package handler

import (
	"live_support_server/internal/dto/request"
	"live_support_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 访客端消息请求处理器
type MessageHandler struct {
	conversationSvc service.ConversationService
}

// NewMessageHandler 创建访客端消息处理器实例
func NewMessageHandler(conversationSvc service.ConversationService) *MessageHandler {
	return &MessageHandler{conversationSvc: conversationSvc}
}

// SendVisitorMessage 访客发送消息
// POST /message/send
// 请求体: request.VisitorMessageRequest
// 访客身份取自 JWT 中间件写入的上下文，防止冒用他人身份发消息
// 响应: respond.MessageRespond
func (h *MessageHandler) SendVisitorMessage(c *gin.Context) {
	var req request.VisitorMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	visitorId := c.GetString("user_id")
	data, err := h.conversationSvc.SendVisitorMessage(visitorId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetSessionMessages 访客拉取自己会话的消息记录
// POST /message/list
// 请求体: request.OpenSessionRequest
// 不改动已读标记，访客查看历史不影响客服端的未读数
// 响应: []respond.MessageRespond
func (h *MessageHandler) GetSessionMessages(c *gin.Context) {
	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.GetMessages(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
