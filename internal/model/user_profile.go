// Package model 定义数据库实体模型
// 本文件定义访客资料模型，供会话列表展示访客身份
package model

import (
	"gorm.io/gorm"
)

// UserProfile 访客资料
// 对应数据库 user_profile 表
// 由外部身份系统维护，本引擎只做查询（查不到时展示 "Unknown"）
type UserProfile struct {
	gorm.Model

	// Uuid 用户唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:用户uuid"`

	// Email 邮箱，会话列表的展示身份
	Email string `gorm:"column:email;type:varchar(100);comment:邮箱"`

	// FullName 用户全名
	FullName string `gorm:"column:full_name;type:varchar(50);comment:全名"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profile"
}
