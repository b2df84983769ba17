package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dexpulse/trendwatch/internal/config"
	"github.com/sirupsen/logrus"
)

func newTestClient(serverURL string) *Client {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(&config.Config{
		TelegramAPIBaseURL: serverURL,
		TelegramBotToken:   "test-token",
		TelegramChatID:     "-100123",
		HTTPTimeout:        5 * time.Second,
	}, log)
}

func TestSendMessageParsesMessageID(t *testing.T) {
	var gotPath, gotChatID, gotParseMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotChatID = r.PostFormValue("chat_id")
		gotParseMode = r.PostFormValue("parse_mode")
		w.Write([]byte(`{"ok":true,"result":{"message_id":4242}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	id, err := c.SendMessage(context.Background(), "<b>hello</b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 4242 {
		t.Errorf("message id: got %d, want 4242", id)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotChatID != "-100123" {
		t.Errorf("chat_id: got %q", gotChatID)
	}
	if gotParseMode != "HTML" {
		t.Errorf("parse_mode: got %q", gotParseMode)
	}
}

func TestSendMessageSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: message text is empty"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.SendMessage(context.Background(), ""); err == nil {
		t.Fatal("expected error from ok=false response")
	}
}

func TestDeletePinUnpin(t *testing.T) {
	var paths []string
	var disableNotification string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		r.ParseForm()
		if v := r.PostFormValue("disable_notification"); v != "" {
			disableNotification = v
		}
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	ctx := context.Background()

	if err := c.DeleteMessage(ctx, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.PinMessage(ctx, 7); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := c.UnpinAll(ctx); err != nil {
		t.Fatalf("unpin all: %v", err)
	}

	want := []string{
		"/bottest-token/deleteMessage",
		"/bottest-token/pinChatMessage",
		"/bottest-token/unpinAllChatMessages",
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(paths))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("call %d: got %q, want %q", i, paths[i], want[i])
		}
	}
	if disableNotification != "true" {
		t.Errorf("pin must set disable_notification=true, got %q", disableNotification)
	}
}
