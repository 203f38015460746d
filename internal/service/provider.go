// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"live_support_server/internal/dao/mysql/repository"
	myredis "live_support_server/internal/dao/redis"
	"live_support_server/internal/service/conversation"
	"live_support_server/internal/service/fanout"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	Conversation ConversationService // 客服会话 Service
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收 Repository 聚合实例、缓存服务和消息代理
//  2. 创建各个 Service 实例，注入依赖
//  3. 返回 Services 聚合
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, broker fanout.MessageBroker) *Services {
	conversationSvc := conversation.NewConversationService(repos, cache, broker)

	return &Services{
		Conversation: conversationSvc,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Conversation.ListSessions() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository、Redis、Broker 初始化之后
func InitServices(repos *repository.Repositories, cache myredis.AsyncCacheService, broker fanout.MessageBroker) {
	Svc = NewServices(repos, cache, broker)
}
