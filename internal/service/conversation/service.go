// Package conversation 实现客服会话业务逻辑
// service.go
// 核心职责：客服会话的全部操作入口
// 1. 访客发消息、客服回复（含状态自动流转和欢迎语自动回复）
// 2. 会话列表聚合（Redis 缓存加速）与打开会话（清零未读）
// 3. 会话状态管理与整会话删除
// 4. 每次写入后通过 MessageBroker 推送实时事件
package conversation

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"live_support_server/internal/dao/mysql/repository"
	myredis "live_support_server/internal/dao/redis"
	"live_support_server/internal/dto/request"
	"live_support_server/internal/dto/respond"
	"live_support_server/internal/model"
	"live_support_server/internal/service/fanout"
	"live_support_server/pkg/constants"
	"live_support_server/pkg/enum/message/message_role_enum"
	"live_support_server/pkg/enum/session/session_status_enum"
	"live_support_server/pkg/errorx"
	"live_support_server/pkg/quickresponse"
	"live_support_server/pkg/util/snowflake"
)

// 缓存键
const (
	// sessionListCacheKey 会话摘要列表缓存（全量，状态过滤在内存中完成）
	sessionListCacheKey = "support_session_list"
	// messageListCacheKeyPrefix 单会话消息列表缓存前缀
	messageListCacheKeyPrefix = "support_message_list_"
)

// welcomeReply 访客首条消息触发的自动回复文案
const welcomeReply = "您好！感谢您的咨询，客服人员会尽快回复您。"

// conversationService 客服会话业务逻辑实现
// 通过构造函数注入 Repository、Cache 和 Broker 依赖
type conversationService struct {
	repos  *repository.Repositories
	cache  myredis.AsyncCacheService
	broker fanout.MessageBroker
}

// NewConversationService 构造函数，注入所有依赖
func NewConversationService(repos *repository.Repositories, cache myredis.AsyncCacheService, broker fanout.MessageBroker) *conversationService {
	return &conversationService{
		repos:  repos,
		cache:  cache,
		broker: broker,
	}
}

// ListSessions 获取会话摘要列表
// 1. 校验状态过滤值
// 2. 尝试读缓存（缓存存全量列表，过滤在内存中完成）
// 3. 缓存未命中则从消息记录和注册表重建，并异步回写缓存
func (s *conversationService) ListSessions(req request.SessionListRequest) ([]respond.SessionSummaryRespond, error) {
	if req.Status != "" && !session_status_enum.IsValidFilter(req.Status) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "无效的状态过滤值: %s", req.Status)
	}

	// 1. 尝试读缓存
	rspString, err := s.cache.Get(context.Background(), sessionListCacheKey)
	if err == nil && rspString != "" {
		var summaries []respond.SessionSummaryRespond
		unmarshalErr := json.Unmarshal([]byte(rspString), &summaries)
		if unmarshalErr == nil {
			return filterByStatus(summaries, req.Status), nil
		}
		// 反序列化失败，记录日志并降级查库
		zap.L().Error("Unmarshal session list cache failed", zap.Error(unmarshalErr))
	} else if err != nil {
		// Redis 报错（非key不存在），记录日志
		zap.L().Error(err.Error())
	}

	// 2. 查库重建
	summaries, err := s.listFromStore()
	if err != nil {
		return nil, err
	}

	// 3. 回写缓存
	s.cache.SubmitTask(func() {
		rspBytes, err := json.Marshal(summaries)
		if err != nil {
			zap.L().Error("Marshal failed", zap.Error(err))
			return
		}
		_ = s.cache.Set(context.Background(), sessionListCacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
	})

	return filterByStatus(summaries, req.Status), nil
}

// Refresh 绕过缓存强制重建会话摘要列表，并同步刷新缓存
func (s *conversationService) Refresh(req request.SessionListRequest) ([]respond.SessionSummaryRespond, error) {
	if req.Status != "" && !session_status_enum.IsValidFilter(req.Status) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "无效的状态过滤值: %s", req.Status)
	}

	summaries, err := s.listFromStore()
	if err != nil {
		return nil, err
	}

	s.cache.SubmitTask(func() {
		rspBytes, err := json.Marshal(summaries)
		if err != nil {
			zap.L().Error("Marshal failed", zap.Error(err))
			return
		}
		_ = s.cache.Set(context.Background(), sessionListCacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
	})

	return filterByStatus(summaries, req.Status), nil
}

// listFromStore 从消息记录和注册表重建全量会话摘要
func (s *conversationService) listFromStore() ([]respond.SessionSummaryRespond, error) {
	messages, err := s.repos.Message.FindAllSupport()
	if err != nil {
		zap.L().Error("查询客服消息失败", zap.Error(err))
		return nil, err
	}
	sessions, err := s.repos.Session.FindAll()
	if err != nil {
		zap.L().Error("查询会话注册表失败", zap.Error(err))
		return nil, err
	}
	return s.buildSummaries(messages, sessions), nil
}

// filterByStatus 按状态过滤摘要列表，""/"all" 不过滤
func filterByStatus(summaries []respond.SessionSummaryRespond, status string) []respond.SessionSummaryRespond {
	if status == "" || status == session_status_enum.FilterAll {
		return summaries
	}
	filtered := make([]respond.SessionSummaryRespond, 0, len(summaries))
	for _, summary := range summaries {
		if summary.Status == status {
			filtered = append(filtered, summary)
		}
	}
	return filtered
}

// OpenSession 打开会话
// 返回该会话的完整消息记录（时间升序），并将所有消息标记为已读
func (s *conversationService) OpenSession(req request.OpenSessionRequest) ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindBySessionId(req.SessionId)
	if err != nil {
		zap.L().Error("查询会话消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
	}

	if err := s.repos.Message.MarkSessionRead(req.SessionId); err != nil {
		zap.L().Error("标记会话已读失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}

	// 响应中反映已读结果
	rsp := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		item := toMessageRespond(&messages[i])
		item.IsRead = true
		rsp = append(rsp, *item)
	}

	// 未读数变化，会话列表缓存失效；消息列表缓存回写最新内容
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), sessionListCacheKey); err != nil {
			zap.L().Error("清除会话列表缓存失败", zap.Error(err))
		}
		if rspBytes, err := json.Marshal(rsp); err == nil {
			_ = s.cache.Set(context.Background(), messageListCacheKeyPrefix+req.SessionId, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
		}
	})

	return rsp, nil
}

// GetMessages 拉取会话消息记录（访客侧）
// 与 OpenSession 的区别：不改动已读标记，访客查看历史不影响客服端的未读数
func (s *conversationService) GetMessages(req request.OpenSessionRequest) ([]respond.MessageRespond, error) {
	cacheKey := messageListCacheKeyPrefix + req.SessionId

	// 1. 尝试读缓存
	rspString, err := s.cache.Get(context.Background(), cacheKey)
	if err == nil && rspString != "" {
		var rsp []respond.MessageRespond
		unmarshalErr := json.Unmarshal([]byte(rspString), &rsp)
		if unmarshalErr == nil {
			return rsp, nil
		}
		zap.L().Error("Unmarshal message list cache failed", zap.Error(unmarshalErr))
	} else if err != nil {
		zap.L().Error(err.Error())
	}

	// 2. 查库
	messages, err := s.repos.Message.FindBySessionId(req.SessionId)
	if err != nil {
		zap.L().Error("查询会话消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
	}
	rsp := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		rsp = append(rsp, *toMessageRespond(&messages[i]))
	}

	// 3. 回写缓存
	s.cache.SubmitTask(func() {
		if rspBytes, err := json.Marshal(rsp); err == nil {
			_ = s.cache.Set(context.Background(), cacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
		}
	})

	return rsp, nil
}

// SendReply 客服回复消息
// 1. 会话必须已有消息，否则视为不存在
// 2. 回复行记录会话所属访客的 user_id，角色为 staff，直接记为已读
// 3. open 状态的会话自动流转为 pending（唯一的自动状态流转）
// 4. 推送 message_append 事件
func (s *conversationService) SendReply(req request.SendReplyRequest) (*respond.MessageRespond, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}

	messages, err := s.repos.Message.FindBySessionId(req.SessionId)
	if err != nil {
		zap.L().Error("查询会话消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
	}
	visitorId := messages[0].UserId

	message := model.ChatMessage{
		Uuid:      snowflake.GenerateID(),
		SessionId: req.SessionId,
		UserId:    visitorId,
		Role:      message_role_enum.Staff,
		Content:   content,
		IsRead:    true, // 客服自己发出的消息不计入未读
		IsSupport: true,
	}
	if err := s.repos.Message.Create(&message); err != nil {
		zap.L().Error("写入客服回复失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}

	// 状态自动流转：open -> pending
	currentStatus := session_status_enum.Open
	sess, err := s.repos.Session.FindBySessionId(req.SessionId)
	if err == nil {
		currentStatus = sess.Status
	} else if !errorx.IsNotFound(err) {
		zap.L().Warn("查询会话注册表失败", zap.String("session_id", req.SessionId), zap.Error(err))
	}
	if currentStatus == session_status_enum.Open {
		if err := s.repos.Session.Upsert(&model.SupportSession{
			SessionId: req.SessionId,
			UserId:    visitorId,
			Status:    session_status_enum.Pending,
		}); err != nil {
			zap.L().Error("更新会话状态失败", zap.String("session_id", req.SessionId), zap.Error(err))
			return nil, err
		}
	}

	rsp := toMessageRespond(&message)
	s.publish(fanout.EventMessageAppend, req.SessionId, rsp)
	s.invalidateCaches(req.SessionId)

	zap.L().Info("客服回复成功",
		zap.String("session_id", req.SessionId),
		zap.String("message_id", rsp.Id),
	)
	return rsp, nil
}

// SendVisitorMessage 访客发送消息
// 1. 校验访客身份和消息内容
// 2. 注册表中没有该会话的记录时写入一条 open 状态的行
//    （已有记录保持不变：访客发消息不会把 resolved 的会话拉回 open）
// 3. 会话的第一条消息触发欢迎语自动回复
// 4. 推送 message_append 事件
func (s *conversationService) SendVisitorMessage(visitorId string, req request.VisitorMessageRequest) (*respond.MessageRespond, error) {
	if visitorId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "访客身份缺失")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}

	count, err := s.repos.Message.CountBySessionId(req.SessionId)
	if err != nil {
		zap.L().Error("统计会话消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}

	message := model.ChatMessage{
		Uuid:      snowflake.GenerateID(),
		SessionId: req.SessionId,
		UserId:    visitorId,
		Role:      message_role_enum.Visitor,
		Content:   content,
		IsRead:    false,
		IsSupport: true,
	}
	if err := s.repos.Message.Create(&message); err != nil {
		zap.L().Error("写入访客消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}

	// 注册表补行（仅在没有记录时写入）
	if _, err := s.repos.Session.FindBySessionId(req.SessionId); err != nil {
		if errorx.IsNotFound(err) {
			if err := s.repos.Session.Upsert(&model.SupportSession{
				SessionId: req.SessionId,
				UserId:    visitorId,
				Status:    session_status_enum.Open,
			}); err != nil {
				zap.L().Error("写入会话注册表失败", zap.String("session_id", req.SessionId), zap.Error(err))
			}
		} else {
			zap.L().Warn("查询会话注册表失败", zap.String("session_id", req.SessionId), zap.Error(err))
		}
	}

	rsp := toMessageRespond(&message)
	s.publish(fanout.EventMessageAppend, req.SessionId, rsp)

	// 首条消息触发欢迎语
	if count == 0 {
		s.sendWelcomeReply(req.SessionId, visitorId)
	}

	s.invalidateCaches(req.SessionId)
	return rsp, nil
}

// sendWelcomeReply 写入并推送欢迎语自动回复
// 尽力而为：失败只记录日志，不影响访客消息本身
func (s *conversationService) sendWelcomeReply(sessionId, visitorId string) {
	welcome := model.ChatMessage{
		Uuid:      snowflake.GenerateID(),
		SessionId: sessionId,
		UserId:    visitorId,
		Role:      message_role_enum.Staff,
		Content:   welcomeReply,
		IsRead:    true,
		IsSupport: true,
	}
	if err := s.repos.Message.Create(&welcome); err != nil {
		zap.L().Error("写入欢迎语失败", zap.String("session_id", sessionId), zap.Error(err))
		return
	}
	s.publish(fanout.EventMessageAppend, sessionId, toMessageRespond(&welcome))
}

// SetStatus 设置会话状态
// 校验状态合法性和会话存在性，写入注册表后返回更新后的会话摘要
func (s *conversationService) SetStatus(req request.SetStatusRequest) (*respond.SessionSummaryRespond, error) {
	if !session_status_enum.IsValid(req.Status) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "无效的会话状态: %s", req.Status)
	}

	messages, err := s.repos.Message.FindBySessionId(req.SessionId)
	if err != nil {
		zap.L().Error("查询会话消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
	}
	visitorId := messages[0].UserId

	session := model.SupportSession{
		SessionId: req.SessionId,
		UserId:    visitorId,
		Status:    req.Status,
	}
	if err := s.repos.Session.Upsert(&session); err != nil {
		zap.L().Error("更新会话状态失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, err
	}

	s.publish(fanout.EventSessionRefresh, req.SessionId, nil)
	s.invalidateCaches("")

	// 聚合器要求消息倒序
	reversed := make([]model.ChatMessage, len(messages))
	for i := range messages {
		reversed[len(messages)-1-i] = messages[i]
	}
	summaries := s.buildSummaries(reversed, []model.SupportSession{session})
	return &summaries[0], nil
}

// DeleteConversation 删除会话
// 消息和注册表记录在同一事务中删除，重复删除返回"会话不存在"
func (s *conversationService) DeleteConversation(req request.DeleteConversationRequest) error {
	count, err := s.repos.Message.CountBySessionId(req.SessionId)
	if err != nil {
		zap.L().Error("统计会话消息失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return err
	}
	_, sessErr := s.repos.Session.FindBySessionId(req.SessionId)
	if sessErr != nil && !errorx.IsNotFound(sessErr) {
		zap.L().Error("查询会话注册表失败", zap.String("session_id", req.SessionId), zap.Error(sessErr))
		return sessErr
	}
	if count == 0 && errorx.IsNotFound(sessErr) {
		return errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
	}

	err = s.repos.Transaction(func(txRepos *repository.Repositories) error {
		if err := txRepos.Message.DeleteBySessionId(req.SessionId); err != nil {
			return err
		}
		return txRepos.Session.DeleteBySessionId(req.SessionId)
	})
	if err != nil {
		zap.L().Error("删除会话失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return err
	}

	s.publish(fanout.EventSessionRefresh, req.SessionId, nil)
	s.invalidateCaches(req.SessionId)

	zap.L().Info("会话删除成功", zap.String("session_id", req.SessionId))
	return nil
}

// QuickResponses 获取快捷回复模板
func (s *conversationService) QuickResponses() []quickresponse.QuickResponse {
	return quickresponse.List()
}

// toMessageRespond 将消息模型转换为响应 DTO
func toMessageRespond(message *model.ChatMessage) *respond.MessageRespond {
	return &respond.MessageRespond{
		Id:        strconv.FormatInt(message.Uuid, 10),
		SessionId: message.SessionId,
		UserId:    message.UserId,
		Role:      message.Role,
		Content:   message.Content,
		IsRead:    message.IsRead,
		CreatedAt: message.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// publish 推送实时事件
// 推送失败不影响已持久化的数据，客服端可通过 Refresh 兜底
func (s *conversationService) publish(kind, sessionId string, message *respond.MessageRespond) {
	if s.broker == nil {
		return
	}
	ev := fanout.Event{Kind: kind, SessionId: sessionId, Message: message}
	data, err := json.Marshal(ev)
	if err != nil {
		zap.L().Error("序列化推送事件失败", zap.Error(err))
		return
	}
	if err := s.broker.Publish(context.Background(), data); err != nil {
		wrapped := errorx.Wrapf(err, errorx.CodeChannelError, "publish %s event", kind)
		zap.L().Warn("推送事件失败",
			zap.String("kind", kind),
			zap.String("session_id", sessionId),
			zap.Error(wrapped),
		)
	}
}

// invalidateCaches 异步清理缓存
// 会话列表缓存总是失效，sessionId 非空时一并失效该会话的消息列表缓存
func (s *conversationService) invalidateCaches(sessionId string) {
	s.cache.SubmitTask(func() {
		patterns := []string{sessionListCacheKey}
		if sessionId != "" {
			patterns = append(patterns, messageListCacheKeyPrefix+sessionId)
		}
		if err := s.cache.DeleteByPatterns(context.Background(), patterns); err != nil {
			zap.L().Error("清除缓存失败", zap.Error(err))
		}
	})
}
