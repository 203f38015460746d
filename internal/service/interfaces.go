// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"live_support_server/internal/dto/request"
	"live_support_server/internal/dto/respond"
	"live_support_server/pkg/quickresponse"
)

// ConversationService 客服会话业务接口
// 聚合消息存储、会话注册表和实时推送，承载客服工作台与访客端的全部操作
type ConversationService interface {
	// ListSessions 获取会话摘要列表（按最新消息倒序，支持状态过滤）
	ListSessions(req request.SessionListRequest) ([]respond.SessionSummaryRespond, error)
	// OpenSession 打开会话：返回完整消息记录并清零未读数（客服侧）
	OpenSession(req request.OpenSessionRequest) ([]respond.MessageRespond, error)
	// GetMessages 拉取会话消息记录，不改动已读标记（访客侧）
	GetMessages(req request.OpenSessionRequest) ([]respond.MessageRespond, error)
	// SendReply 客服回复消息（open 状态的会话自动转为 pending）
	SendReply(req request.SendReplyRequest) (*respond.MessageRespond, error)
	// SendVisitorMessage 访客发送消息（首条消息触发欢迎语自动回复）
	SendVisitorMessage(visitorId string, req request.VisitorMessageRequest) (*respond.MessageRespond, error)
	// SetStatus 设置会话状态，返回更新后的会话摘要
	SetStatus(req request.SetStatusRequest) (*respond.SessionSummaryRespond, error)
	// DeleteConversation 删除会话（消息和注册表记录一并删除）
	DeleteConversation(req request.DeleteConversationRequest) error
	// Refresh 绕过缓存强制重建会话摘要列表
	Refresh(req request.SessionListRequest) ([]respond.SessionSummaryRespond, error)
	// QuickResponses 获取快捷回复模板
	QuickResponses() []quickresponse.QuickResponse
}
