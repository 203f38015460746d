// Package repository 提供数据访问层的具体实现
// 本文件实现 SessionRepository 接口，处理会话注册表的数据库操作
package repository

import (
	"live_support_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRepository SessionRepository 接口的实现
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Upsert 创建或更新会话状态行
// session_id 冲突时只更新 status 和 user_id，保证每会话至多一行
func (r *sessionRepository) Upsert(session *model.SupportSession) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "user_id", "updated_at"}),
	}).Create(session).Error; err != nil {
		return wrapDBErrorf(err, "写入会话注册表 session_id=%s", session.SessionId)
	}
	return nil
}

// FindBySessionId 按会话 ID 查找注册表记录
// 未找到返回 CodeNotFound，调用方应将其视为 open 状态
func (r *sessionRepository) FindBySessionId(sessionId string) (*model.SupportSession, error) {
	var session model.SupportSession
	if err := r.db.Where("session_id = ?", sessionId).First(&session).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话注册表 session_id=%s", sessionId)
	}
	return &session, nil
}

// FindAll 查找所有注册表记录
func (r *sessionRepository) FindAll() ([]model.SupportSession, error) {
	var sessions []model.SupportSession
	if err := r.db.Find(&sessions).Error; err != nil {
		return nil, wrapDBError(err, "查询会话注册表")
	}
	return sessions, nil
}

// DeleteBySessionId 删除会话注册表记录
// 会话删除不可恢复，使用 Unscoped 硬删除
func (r *sessionRepository) DeleteBySessionId(sessionId string) error {
	if err := r.db.Unscoped().Where("session_id = ?", sessionId).
		Delete(&model.SupportSession{}).Error; err != nil {
		return wrapDBErrorf(err, "删除会话注册表 session_id=%s", sessionId)
	}
	return nil
}
