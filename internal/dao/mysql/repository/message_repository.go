package repository

import (
	"live_support_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 追加一条消息
// 并发写安全由数据库保证：每次调用只做一条 INSERT，无读-改-写
func (r *messageRepository) Create(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindBySessionId 按会话查询消息，created_at 升序
func (r *messageRepository) FindBySessionId(sessionId string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("session_id = ? AND is_support = ?", sessionId, true).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 session_id=%s", sessionId)
	}
	return messages, nil
}

// FindAllSupport 查询全部客服通道消息，created_at 降序
func (r *messageRepository) FindAllSupport() ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("is_support = ?", true).
		Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "查询客服消息列表")
	}
	return messages, nil
}

// CountBySessionId 统计会话的消息条数
func (r *messageRepository) CountBySessionId(sessionId string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChatMessage{}).
		Where("session_id = ? AND is_support = ?", sessionId, true).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计消息 session_id=%s", sessionId)
	}
	return count, nil
}

// MarkSessionRead 将会话内所有消息置为已读
// 只做 false -> true 的单向更新，重复调用结果不变
func (r *messageRepository) MarkSessionRead(sessionId string) error {
	if err := r.db.Model(&model.ChatMessage{}).
		Where("session_id = ? AND is_support = ?", sessionId, true).
		Update("is_read", true).Error; err != nil {
		return wrapDBErrorf(err, "标记已读 session_id=%s", sessionId)
	}
	return nil
}

// DeleteBySessionId 删除会话的全部消息
// 会话删除不可恢复，使用 Unscoped 硬删除
func (r *messageRepository) DeleteBySessionId(sessionId string) error {
	if err := r.db.Unscoped().
		Where("session_id = ? AND is_support = ?", sessionId, true).
		Delete(&model.ChatMessage{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 session_id=%s", sessionId)
	}
	return nil
}
