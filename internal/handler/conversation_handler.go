// Package handler 提供 HTTP 请求处理器
// 本文件处理客服工作台相关的 API 请求
package handler

import (
	"live_support_server/internal/dto/request"
	"live_support_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 客服工作台请求处理器
// 通过构造函数注入 ConversationService，遵循依赖倒置原则
type ConversationHandler struct {
	conversationSvc service.ConversationService
}

// NewConversationHandler 创建客服工作台处理器实例
func NewConversationHandler(conversationSvc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationSvc: conversationSvc}
}

// ListSessions 获取会话摘要列表
// GET /support/listSessions?status=open
// 查询参数: request.SessionListRequest
// 响应: []respond.SessionSummaryRespond
func (h *ConversationHandler) ListSessions(c *gin.Context) {
	var req request.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.ListSessions(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Refresh 绕过缓存强制重建会话摘要列表
// GET /support/refresh?status=all
// 查询参数: request.SessionListRequest
// 响应: []respond.SessionSummaryRespond
func (h *ConversationHandler) Refresh(c *gin.Context) {
	var req request.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.Refresh(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// OpenSession 打开会话
// POST /support/openSession
// 请求体: request.OpenSessionRequest
// 响应: []respond.MessageRespond (完整消息记录，未读数清零)
func (h *ConversationHandler) OpenSession(c *gin.Context) {
	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.OpenSession(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendReply 客服回复消息
// POST /support/sendReply
// 请求体: request.SendReplyRequest
// 响应: respond.MessageRespond
func (h *ConversationHandler) SendReply(c *gin.Context) {
	var req request.SendReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.SendReply(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SetStatus 设置会话状态
// POST /support/setStatus
// 请求体: request.SetStatusRequest
// 响应: respond.SessionSummaryRespond (更新后的会话摘要)
func (h *ConversationHandler) SetStatus(c *gin.Context) {
	var req request.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.SetStatus(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteConversation 删除会话
// POST /support/deleteConversation
// 请求体: request.DeleteConversationRequest
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	var req request.DeleteConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.conversationSvc.DeleteConversation(req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// QuickResponses 获取快捷回复模板
// GET /support/quickResponses
// 响应: []quickresponse.QuickResponse
func (h *ConversationHandler) QuickResponses(c *gin.Context) {
	HandleSuccess(c, h.conversationSvc.QuickResponses())
}
