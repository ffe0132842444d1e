package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tgmarketer/audit-bot/internal/config"
	"github.com/tgmarketer/audit-bot/internal/registry"
	"github.com/tgmarketer/audit-bot/internal/repository"
	"github.com/tgmarketer/audit-bot/internal/scheduler"
	"github.com/tgmarketer/audit-bot/internal/service"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

type apiCall struct {
	Method string
	Body   map[string]any
}

func (c apiCall) text() string {
	s, _ := c.Body["text"].(string)
	return s
}

// raw returns the whole recorded request body as JSON for contains-style
// assertions on keyboards.
func (c apiCall) raw() string {
	b, _ := json.Marshal(c.Body)
	return string(b)
}

// fakeTelegram is an httptest Bot API that records every call and
// answers with a fresh message ID.
type fakeTelegram struct {
	srv   *httptest.Server
	mu    sync.Mutex
	calls []apiCall
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()
	f := &fakeTelegram{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Body: body})
		n := len(f.calls)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if method == "sendMessage" {
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d}}`, n)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTelegram) callsFor(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []apiCall{}
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTelegram) lastMessageText() string {
	sends := f.callsFor("sendMessage")
	if len(sends) == 0 {
		return ""
	}
	return sends[len(sends)-1].text()
}

type stubSched struct {
	mu   sync.Mutex
	jobs []scheduler.Job
}

func (s *stubSched) Schedule(job scheduler.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

func (s *stubSched) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type testEnv struct {
	h          *Handler
	tg         *fakeTelegram
	repo       repository.AuditRepository
	recipients *registry.Recipients
	sched      *stubSched
}

func newTestEnv(t *testing.T, adminUsername string) *testEnv {
	t.Helper()
	tg := newFakeTelegram(t)
	client := telegram.NewClientWithBaseURL("TOKEN", tg.srv.URL)
	repo := repository.NewFileAuditRepository(filepath.Join(t.TempDir(), "audits.json"))
	recipients := registry.NewRecipients()
	sched := &stubSched{}
	leads := service.NewLeadService(repo, client, sched, "@operator", 48)
	broadcaster := service.NewBroadcaster(client)
	cfg := &config.Config{
		TelegramToken:      "TOKEN",
		AdminUsername:      adminUsername,
		AdminContact:       "@operator",
		FollowUpDelayHours: 48,
	}
	return &testEnv{
		h:          New(cfg, client, leads, broadcaster, repo, recipients),
		tg:         tg,
		repo:       repo,
		recipients: recipients,
		sched:      sched,
	}
}

func userMsg(userID int64, username, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: userID, Username: username, FirstName: "Тест"},
		Chat:      telegram.Chat{ID: userID},
		Text:      text,
	}
}

func userCallback(userID int64, username, data string) *telegram.CallbackQuery {
	return &telegram.CallbackQuery{
		ID:      "cb1",
		From:    &telegram.User{ID: userID, Username: username},
		Message: &telegram.Message{MessageID: 42, Chat: telegram.Chat{ID: userID}},
		Data:    data,
	}
}
