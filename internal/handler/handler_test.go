package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"live_support_server/internal/dto/request"
	"live_support_server/internal/dto/respond"
	"live_support_server/internal/handler"
	"live_support_server/internal/https_server"
	"live_support_server/internal/service"
	"live_support_server/internal/service/fanout"
	"live_support_server/pkg/errorx"
	"live_support_server/pkg/quickresponse"
	"live_support_server/pkg/util/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		panic(err)
	}
	m.Run()
}

// ==================== Service 桩实现 ====================

var stubMessage = respond.MessageRespond{
	Id:        "1956789012345678901",
	SessionId: "S_1",
	UserId:    "U_1",
	Role:      "visitor",
	Content:   "你好",
	IsRead:    false,
	CreatedAt: "2025-03-01 09:00:01",
}

var stubSummary = respond.SessionSummaryRespond{
	SessionId:       "S_1",
	UserId:          "U_1",
	UserEmail:       "alice@example.com",
	LastMessage:     "你好",
	LastMessageTime: "2025-03-01 09:00:01",
	UnreadCount:     1,
	Status:          "open",
}

// stubConversationService 返回固定数据并记录调用，未知会话返回业务错误
type stubConversationService struct {
	mu            sync.Mutex
	lastVisitorId string
}

func (s *stubConversationService) ListSessions(req request.SessionListRequest) ([]respond.SessionSummaryRespond, error) {
	return []respond.SessionSummaryRespond{stubSummary}, nil
}

func (s *stubConversationService) OpenSession(req request.OpenSessionRequest) ([]respond.MessageRespond, error) {
	if req.SessionId == "S_MISSING" {
		return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
	}
	return []respond.MessageRespond{stubMessage}, nil
}

func (s *stubConversationService) GetMessages(req request.OpenSessionRequest) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{stubMessage}, nil
}

func (s *stubConversationService) SendReply(req request.SendReplyRequest) (*respond.MessageRespond, error) {
	msg := stubMessage
	msg.Role = "staff"
	msg.Content = req.Content
	msg.IsRead = true
	return &msg, nil
}

func (s *stubConversationService) SendVisitorMessage(visitorId string, req request.VisitorMessageRequest) (*respond.MessageRespond, error) {
	s.mu.Lock()
	s.lastVisitorId = visitorId
	s.mu.Unlock()
	msg := stubMessage
	msg.UserId = visitorId
	msg.Content = req.Content
	return &msg, nil
}

func (s *stubConversationService) SetStatus(req request.SetStatusRequest) (*respond.SessionSummaryRespond, error) {
	summary := stubSummary
	summary.Status = req.Status
	return &summary, nil
}

func (s *stubConversationService) DeleteConversation(req request.DeleteConversationRequest) error {
	return nil
}

func (s *stubConversationService) Refresh(req request.SessionListRequest) ([]respond.SessionSummaryRespond, error) {
	return []respond.SessionSummaryRespond{stubSummary}, nil
}

func (s *stubConversationService) QuickResponses() []quickresponse.QuickResponse {
	return quickresponse.List()
}

var _ service.ConversationService = (*stubConversationService)(nil)

// ==================== 测试辅助 ====================

func newTestServer(t *testing.T) (*httptest.Server, *stubConversationService) {
	t.Helper()
	stub := &stubConversationService{}
	handlers := handler.NewHandlers(&service.Services{Conversation: stub})
	server := httptest.NewServer(https_server.Init(handlers))
	t.Cleanup(server.Close)
	return server, stub
}

func mustToken(t *testing.T, userId string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(userId)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doReq(t *testing.T, method, url, token string, body any) map[string]any {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: status %d", method, url, resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func respCode(body map[string]any) int {
	code, _ := body["code"].(float64)
	return int(code)
}

// ==================== 认证 ====================

func TestRoutesRequireAuth(t *testing.T) {
	server, _ := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/support/listSessions"},
		{http.MethodGet, "/support/refresh"},
		{http.MethodGet, "/support/quickResponses"},
		{http.MethodPost, "/support/openSession"},
		{http.MethodPost, "/support/sendReply"},
		{http.MethodPost, "/support/setStatus"},
		{http.MethodPost, "/support/deleteConversation"},
		{http.MethodPost, "/message/send"},
		{http.MethodPost, "/message/list"},
	} {
		req, err := http.NewRequest(route.method, server.URL+route.path, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", route.method, route.path, err)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized || respCode(body) != errorx.CodeUnauthorized {
			t.Fatalf("%s %s: status %d, code %d; want 401/%d",
				route.method, route.path, resp.StatusCode, respCode(body), errorx.CodeUnauthorized)
		}
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	server, _ := newTestServer(t)

	refresh, _, err := jwt.GenerateRefreshToken("staff_007")
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/support/listSessions", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted, status %d", resp.StatusCode)
	}
}

// ==================== 客服工作台路由 ====================

func TestSupportRoutes(t *testing.T) {
	server, _ := newTestServer(t)
	token := mustToken(t, "staff_007")

	body := doReq(t, http.MethodGet, server.URL+"/support/listSessions?status=open", token, nil)
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("listSessions code = %d", respCode(body))
	}
	if body["data"] == nil {
		t.Fatal("listSessions data missing")
	}

	body = doReq(t, http.MethodGet, server.URL+"/support/refresh", token, nil)
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("refresh code = %d", respCode(body))
	}

	body = doReq(t, http.MethodGet, server.URL+"/support/quickResponses", token, nil)
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("quickResponses code = %d", respCode(body))
	}
	if items, ok := body["data"].([]any); !ok || len(items) == 0 {
		t.Fatalf("quickResponses data = %v", body["data"])
	}

	body = doReq(t, http.MethodPost, server.URL+"/support/openSession", token,
		gin.H{"session_id": "S_1"})
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("openSession code = %d", respCode(body))
	}

	body = doReq(t, http.MethodPost, server.URL+"/support/sendReply", token,
		gin.H{"session_id": "S_1", "content": "收到"})
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("sendReply code = %d", respCode(body))
	}

	body = doReq(t, http.MethodPost, server.URL+"/support/setStatus", token,
		gin.H{"session_id": "S_1", "status": "resolved"})
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("setStatus code = %d", respCode(body))
	}
	if data, ok := body["data"].(map[string]any); !ok || data["status"] != "resolved" {
		t.Fatalf("setStatus data = %v", body["data"])
	}

	body = doReq(t, http.MethodPost, server.URL+"/support/deleteConversation", token,
		gin.H{"session_id": "S_1"})
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("deleteConversation code = %d", respCode(body))
	}
}

func TestSupportRouteErrors(t *testing.T) {
	server, _ := newTestServer(t)
	token := mustToken(t, "staff_007")

	// 业务错误原样透传错误码
	body := doReq(t, http.MethodPost, server.URL+"/support/openSession", token,
		gin.H{"session_id": "S_MISSING"})
	if respCode(body) != errorx.CodeNotFound {
		t.Fatalf("openSession(S_MISSING) code = %d, want %d", respCode(body), errorx.CodeNotFound)
	}

	// 参数绑定错误
	body = doReq(t, http.MethodPost, server.URL+"/support/openSession", token, gin.H{})
	if respCode(body) != errorx.CodeInvalidParam {
		t.Fatalf("openSession(empty) code = %d, want %d", respCode(body), errorx.CodeInvalidParam)
	}
	body = doReq(t, http.MethodPost, server.URL+"/support/sendReply", token,
		gin.H{"session_id": "S_1"})
	if respCode(body) != errorx.CodeInvalidParam {
		t.Fatalf("sendReply(no content) code = %d, want %d", respCode(body), errorx.CodeInvalidParam)
	}
}

// ==================== 访客端路由 ====================

func TestMessageRoutes(t *testing.T) {
	server, stub := newTestServer(t)
	token := mustToken(t, "visitor_U_1")

	body := doReq(t, http.MethodPost, server.URL+"/message/send", token,
		gin.H{"session_id": "S_1", "content": "在吗"})
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("message/send code = %d", respCode(body))
	}
	// 访客身份取自 Token，而不是请求体
	stub.mu.Lock()
	visitorId := stub.lastVisitorId
	stub.mu.Unlock()
	if visitorId != "visitor_U_1" {
		t.Fatalf("visitorId = %q, want from token", visitorId)
	}

	body = doReq(t, http.MethodPost, server.URL+"/message/list", token,
		gin.H{"session_id": "S_1"})
	if respCode(body) != errorx.CodeSuccess {
		t.Fatalf("message/list code = %d", respCode(body))
	}
	items, ok := body["data"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("message/list data = %v", body["data"])
	}
	first, _ := items[0].(map[string]any)
	if first["id"] != stubMessage.Id {
		t.Fatalf("message id = %v, want snowflake string", first["id"])
	}
}

// ==================== WebSocket 路由 ====================

func TestWebSocketRoutes(t *testing.T) {
	server, _ := newTestServer(t)

	broker := fanout.NewStandaloneFanout()
	fanout.GlobalBroker = broker
	go broker.Start()
	t.Cleanup(func() {
		broker.Close()
		fanout.GlobalBroker = nil
	})

	// 缺少 client_id 时拒绝连接（返回 JSON 而不是升级协议）
	resp, err := http.Get(server.URL + "/wss")
	if err != nil {
		t.Fatalf("GET /wss: %v", err)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if respCode(body) != errorx.CodeInvalidParam {
		t.Fatalf("/wss without client_id code = %d", respCode(body))
	}

	// 正常握手并注册到推送服务
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/wss?client_id=C_1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	// 上线欢迎帧
	_, welcome, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if len(welcome) == 0 {
		t.Fatal("empty welcome frame")
	}

	// 登出接口将连接从在线列表移除
	logoutBody := doReq(t, http.MethodPost, server.URL+"/wsLogout", "",
		gin.H{"client_id": "C_1"})
	if respCode(logoutBody) != errorx.CodeSuccess {
		t.Fatalf("wsLogout code = %d", respCode(logoutBody))
	}
}
