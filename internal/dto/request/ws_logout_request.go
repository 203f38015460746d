package request

// WsLogoutRequest WebSocket 登出请求
// 使用位置:
//   - internal/handler/ws_handler.go: WsLogoutHandler
type WsLogoutRequest struct {
	ClientId string `json:"client_id" binding:"required"`
}
