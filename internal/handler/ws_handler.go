// Package handler 提供 HTTP 请求处理器
// 本文件处理客服工作台 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	"live_support_server/internal/dto/request"
	"live_support_server/internal/service/fanout"
	"live_support_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsLoginHandler WebSocket 登录（升级 HTTP 连接为 WebSocket）
// GET /ws/login?client_id=xxx
// 查询参数: client_id - 客服端 UUID
// 功能:
//   - 将 HTTP 连接升级为 WebSocket 连接
//   - 注册客服端到在线列表
//   - 开始接收实时推送事件
func WsLoginHandler(c *gin.Context) {
	clientId := c.Query("client_id")
	if clientId == "" {
		zap.L().Error("clientId获取失败")
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeInvalidParam,
			"msg":  "clientId获取失败",
		})
		return
	}
	// 初始化 WebSocket 客服端连接
	fanout.NewDashboardInit(c, clientId)
}

// WsLogoutHandler WebSocket 登出
// POST /ws/logout
// 请求体: request.WsLogoutRequest
// 功能:
//   - 从在线列表中移除客服端
//   - 关闭 WebSocket 连接
func WsLogoutHandler(c *gin.Context) {
	var req request.WsLogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := fanout.DashboardLogout(req.ClientId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
