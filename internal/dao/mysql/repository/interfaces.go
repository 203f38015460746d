// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"

	"live_support_server/internal/model"
	"live_support_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== Repository 接口定义 ====================

// MessageRepository 消息存储接口
// 按会话追加、查询客服消息，消息行只增不改（is_read 除外）
type MessageRepository interface {
	// Create 追加一条消息
	Create(message *model.ChatMessage) error
	// FindBySessionId 按会话查询消息，created_at 升序
	FindBySessionId(sessionId string) ([]model.ChatMessage, error)
	// FindAllSupport 查询全部客服通道消息，created_at 降序（用于构建会话列表）
	FindAllSupport() ([]model.ChatMessage, error)
	// CountBySessionId 统计会话的消息条数
	CountBySessionId(sessionId string) (int64, error)
	// MarkSessionRead 将会话内所有消息置为已读，幂等
	MarkSessionRead(sessionId string) error
	// DeleteBySessionId 删除会话的全部消息（仅用于整会话删除）
	DeleteBySessionId(sessionId string) error
}

// SessionRepository 会话注册表接口
// 每个 session_id 至多一行，写入走 upsert
type SessionRepository interface {
	// Upsert 创建或更新会话状态行
	Upsert(session *model.SupportSession) error
	// FindBySessionId 按会话 ID 查找注册表记录
	FindBySessionId(sessionId string) (*model.SupportSession, error)
	// FindAll 查找所有注册表记录
	FindAll() ([]model.SupportSession, error)
	// DeleteBySessionId 删除会话注册表记录
	DeleteBySessionId(sessionId string) error
}

// ProfileRepository 访客资料查询接口
// 单次尽力查询，查不到返回 CodeNotFound，由调用方降级为 "Unknown"
type ProfileRepository interface {
	// FindByUuid 根据 UUID 查找访客资料
	FindByUuid(uuid string) (*model.UserProfile, error)
	// Create 创建访客资料（供外部身份系统同步/测试用）
	Create(profile *model.UserProfile) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB          // GORM 数据库实例
	Message MessageRepository // 消息 Repository
	Session SessionRepository // 会话注册表 Repository
	Profile ProfileRepository // 访客资料 Repository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		Message: NewMessageRepository(db),
		Session: NewSessionRepository(db),
		Profile: NewProfileRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// deleteConversation 依赖此方法保证消息与注册表记录同生共死
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		// 无事务能力的实现（如测试用内存仓库）直接顺序执行
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
