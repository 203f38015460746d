package fanout

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"live_support_server/internal/dto/respond"
)

func newTestConn(clientId, watching string, buffer int) *DashboardConn {
	client := &DashboardConn{
		Uuid:     clientId,
		SendBack: make(chan []byte, buffer),
	}
	client.setWatching(watching)
	return client
}

func mustMarshalEvent(t *testing.T, ev Event) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func recvEvent(t *testing.T, client *DashboardConn) Event {
	t.Helper()
	select {
	case data := <-client.SendBack:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("client %s did not receive event", client.Uuid)
		return Event{}
	}
}

func TestDispatchToClients(t *testing.T) {
	watcher := newTestConn("C_watch", "S_1", 8)
	lister := newTestConn("C_list", "", 8)
	other := newTestConn("C_other", "S_2", 8)

	var clients sync.Map
	clients.Store(watcher.Uuid, watcher)
	clients.Store(lister.Uuid, lister)
	clients.Store(other.Uuid, other)

	data := mustMarshalEvent(t, Event{
		Kind:      EventMessageAppend,
		SessionId: "S_1",
		Message:   &respond.MessageRespond{Id: "1", SessionId: "S_1", Content: "你好"},
	})
	dispatchToClients(&clients, data)

	// 正在查看该会话的客服端收到携带消息体的原始事件
	ev := recvEvent(t, watcher)
	if ev.Kind != EventMessageAppend || ev.Message == nil || ev.Message.Content != "你好" {
		t.Fatalf("watcher event = %+v", ev)
	}

	// 其余客服端收到降级后的 session_refresh
	for _, client := range []*DashboardConn{lister, other} {
		ev := recvEvent(t, client)
		if ev.Kind != EventSessionRefresh || ev.SessionId != "S_1" || ev.Message != nil {
			t.Fatalf("client %s event = %+v", client.Uuid, ev)
		}
	}
}

func TestDispatchToClientsDropsWhenQueueFull(t *testing.T) {
	slow := newTestConn("C_slow", "S_1", 1)
	slow.SendBack <- []byte("stale")

	var clients sync.Map
	clients.Store(slow.Uuid, slow)

	data := mustMarshalEvent(t, Event{Kind: EventMessageAppend, SessionId: "S_1"})

	done := make(chan struct{})
	go func() {
		// 队列已满时直接丢弃事件，不能阻塞整条广播链路
		dispatchToClients(&clients, data)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on slow client")
	}

	if got := string(<-slow.SendBack); got != "stale" {
		t.Fatalf("queue head = %q, want stale payload untouched", got)
	}
}

func TestStandaloneFanoutPublish(t *testing.T) {
	broker := NewStandaloneFanout()
	client := newTestConn("C_1", "S_1", 8)
	broker.Clients.Store(client.Uuid, client)

	go broker.Start()
	defer broker.Close()

	data := mustMarshalEvent(t, Event{
		Kind:      EventMessageAppend,
		SessionId: "S_1",
		Message:   &respond.MessageRespond{Id: "1", SessionId: "S_1", Content: "在吗"},
	})
	if err := broker.Publish(context.Background(), data); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ev := recvEvent(t, client)
	if ev.Kind != EventMessageAppend || ev.SessionId != "S_1" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestStandaloneFanoutLogoutStopsDelivery(t *testing.T) {
	broker := NewStandaloneFanout()
	client := newTestConn("C_1", "S_1", 8)
	broker.Clients.Store(client.Uuid, client)

	go broker.Start()
	defer broker.Close()

	if got := broker.GetClient("C_1"); got != client {
		t.Fatalf("GetClient = %v", got)
	}
	if got := broker.GetClient("C_none"); got != nil {
		t.Fatalf("GetClient(unknown) = %v, want nil", got)
	}

	broker.UnregisterClient(client)

	// 下线事件由主循环异步处理，轮询等待生效
	deadline := time.Now().Add(time.Second)
	for broker.GetClient("C_1") != nil {
		if time.Now().After(deadline) {
			t.Fatal("client still registered after logout")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// 下线后事件队列由主循环关闭
	select {
	case payload, ok := <-client.SendBack:
		if ok {
			t.Fatalf("logged-out client received %s", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("SendBack not closed after logout")
	}

	data := mustMarshalEvent(t, Event{Kind: EventSessionRefresh, SessionId: "S_1"})
	if err := broker.Publish(context.Background(), data); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestDispatchToClientsSkipsClosedConn(t *testing.T) {
	gone := newTestConn("C_gone", "S_1", 8)
	gone.closeSend()
	alive := newTestConn("C_alive", "S_1", 8)

	// 下线处理与分发并发时，分发协程可能仍持有已关闭的连接
	var clients sync.Map
	clients.Store(gone.Uuid, gone)
	clients.Store(alive.Uuid, alive)

	data := mustMarshalEvent(t, Event{Kind: EventMessageAppend, SessionId: "S_1"})
	dispatchToClients(&clients, data)

	ev := recvEvent(t, alive)
	if ev.Kind != EventMessageAppend {
		t.Fatalf("alive client event = %+v", ev)
	}
	if _, ok := <-gone.SendBack; ok {
		t.Fatal("closed client received event")
	}

	// closeSend 幂等
	gone.closeSend()
}

func TestStandaloneFanoutSurvivesLogoutDuringBurst(t *testing.T) {
	broker := NewStandaloneFanout()
	leaving := newTestConn("C_leaving", "S_1", 1)
	staying := newTestConn("C_staying", "S_1", 64)
	broker.Clients.Store(leaving.Uuid, leaving)

	go broker.Start()
	defer broker.Close()

	// 事件洪峰中下线：主循环以任意顺序消费 Transmit 和 Logout
	data := mustMarshalEvent(t, Event{Kind: EventMessageAppend, SessionId: "S_1"})
	for i := 0; i < 20; i++ {
		if err := broker.Publish(context.Background(), data); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	broker.UnregisterClient(leaving)
	for i := 0; i < 20; i++ {
		if err := broker.Publish(context.Background(), data); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	// 队列最终被关闭，期间没有任何投递触发 panic
	deadline := time.After(time.Second)
	for open := true; open; {
		select {
		case _, ok := <-leaving.SendBack:
			open = ok
		case <-deadline:
			t.Fatal("SendBack not closed after logout during burst")
		}
	}

	// 主循环仍然存活，新注册的客服端照常收到事件
	broker.Clients.Store(staying.Uuid, staying)
	if err := broker.Publish(context.Background(), data); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	ev := recvEvent(t, staying)
	if ev.SessionId != "S_1" {
		t.Fatalf("event = %+v", ev)
	}
}
