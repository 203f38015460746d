// Package conversation 实现客服会话业务逻辑
// aggregator.go
// 核心职责：会话摘要聚合
// 会话列表不单独落库，而是由消息记录和注册表实时投影得到
package conversation

import (
	"go.uber.org/zap"

	"live_support_server/internal/dto/respond"
	"live_support_server/internal/model"
	"live_support_server/pkg/enum/message/message_role_enum"
	"live_support_server/pkg/enum/session/session_status_enum"
	"live_support_server/pkg/errorx"
)

// unknownEmail 访客资料缺失时的邮箱占位值
const unknownEmail = "Unknown"

// buildSummaries 将消息记录和注册表投影为会话摘要列表
// messages 必须按 created_at 倒序（最新在前），聚合规则：
//  1. 按 session_id 分组，首次出现的消息（即该会话最新一条）决定摘要的
//     最后消息内容和时间，列表顺序即各会话最新消息的新旧顺序
//  2. 未读数统计访客发出且未读的消息
//  3. 状态来自注册表，没有注册表记录的会话默认 open
//  4. 访客邮箱来自资料表，查不到时降级为 "Unknown"
func (s *conversationService) buildSummaries(messages []model.ChatMessage, sessions []model.SupportSession) []respond.SessionSummaryRespond {
	// 注册表状态索引
	statusBySession := make(map[string]string, len(sessions))
	for _, sess := range sessions {
		statusBySession[sess.SessionId] = sess.Status
	}

	summaries := make([]respond.SessionSummaryRespond, 0)
	indexBySession := make(map[string]int)

	for _, msg := range messages {
		idx, seen := indexBySession[msg.SessionId]
		if !seen {
			status, ok := statusBySession[msg.SessionId]
			if !ok {
				status = session_status_enum.Open
			}
			summaries = append(summaries, respond.SessionSummaryRespond{
				SessionId:       msg.SessionId,
				UserId:          msg.UserId,
				UserEmail:       s.lookupEmail(msg.UserId),
				LastMessage:     msg.Content,
				LastMessageTime: msg.CreatedAt.Format("2006-01-02 15:04:05"),
				Status:          status,
			})
			idx = len(summaries) - 1
			indexBySession[msg.SessionId] = idx
		}
		// 未读数只统计访客侧的未读消息
		if msg.Role == message_role_enum.Visitor && !msg.IsRead {
			summaries[idx].UnreadCount++
		}
	}

	return summaries
}

// lookupEmail 查询访客邮箱，查不到或查询失败时降级为占位值
// 资料表由外部身份系统同步，缺行是正常情况，不影响会话列表展示
func (s *conversationService) lookupEmail(userId string) string {
	profile, err := s.repos.Profile.FindByUuid(userId)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Warn("查询访客资料失败", zap.String("user_id", userId), zap.Error(err))
		}
		return unknownEmail
	}
	if profile.Email == "" {
		return unknownEmail
	}
	return profile.Email
}
