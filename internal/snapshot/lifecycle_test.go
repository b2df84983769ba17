package snapshot

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakePublisher struct {
	nextID   int64
	sent     []string
	deleted  []int64
	pinned   []int64
	unpins   int
	sendErr  error
	delErr   error
	pinErr   error
	unpinErr error
}

func (f *fakePublisher) SendMessage(ctx context.Context, text string) (int64, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, text)
	return f.nextID, nil
}

func (f *fakePublisher) DeleteMessage(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.delErr
}

func (f *fakePublisher) PinMessage(ctx context.Context, id int64) error {
	f.pinned = append(f.pinned, id)
	return f.pinErr
}

func (f *fakePublisher) UnpinAll(ctx context.Context) error {
	f.unpins++
	return f.unpinErr
}

type fakeCheckpoint struct {
	ids map[string]int64
}

func newFakeCheckpoint() *fakeCheckpoint {
	return &fakeCheckpoint{ids: make(map[string]int64)}
}

func (f *fakeCheckpoint) LastMessageID(network string) int64 { return f.ids[network] }

func (f *fakeCheckpoint) SetLastMessageID(ctx context.Context, network string, id int64) {
	f.ids[network] = id
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestPublishReplacesPreviousSnapshot(t *testing.T) {
	pub := &fakePublisher{}
	cp := newFakeCheckpoint()
	m := NewManager(pub, cp, quietLogger())
	ctx := context.Background()

	if err := m.Publish(ctx, "besc-hyperchain", "first"); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := m.Publish(ctx, "besc-hyperchain", "second"); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	// The second publish must delete exactly the first message
	if len(pub.deleted) != 1 || pub.deleted[0] != 1 {
		t.Errorf("expected message 1 deleted, got %v", pub.deleted)
	}
	// Only the newest id survives
	if cp.ids["besc-hyperchain"] != 2 {
		t.Errorf("recorded id: got %d, want 2", cp.ids["besc-hyperchain"])
	}
	if len(pub.pinned) != 2 || pub.pinned[1] != 2 {
		t.Errorf("expected both snapshots pinned, got %v", pub.pinned)
	}
	if pub.unpins != 2 {
		t.Errorf("expected unpin before each send, got %d", pub.unpins)
	}
}

func TestPublishFirstRunSkipsDelete(t *testing.T) {
	pub := &fakePublisher{}
	m := NewManager(pub, newFakeCheckpoint(), quietLogger())

	if err := m.Publish(context.Background(), "besc-hyperchain", "text"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(pub.deleted) != 0 {
		t.Errorf("no previous message to delete, got %v", pub.deleted)
	}
}

func TestPublishToleratesCleanupFailures(t *testing.T) {
	pub := &fakePublisher{
		delErr:   fmt.Errorf("message not found"),
		unpinErr: fmt.Errorf("no rights"),
		pinErr:   fmt.Errorf("no rights"),
	}
	cp := newFakeCheckpoint()
	cp.ids["besc-hyperchain"] = 7
	m := NewManager(pub, cp, quietLogger())

	if err := m.Publish(context.Background(), "besc-hyperchain", "text"); err != nil {
		t.Fatalf("cleanup failures must not abort the publish: %v", err)
	}
	if cp.ids["besc-hyperchain"] != 1 {
		t.Errorf("new id must be recorded despite cleanup errors, got %d", cp.ids["besc-hyperchain"])
	}
}

func TestPublishSendFailureKeepsOldID(t *testing.T) {
	pub := &fakePublisher{sendErr: fmt.Errorf("telegram down")}
	cp := newFakeCheckpoint()
	cp.ids["besc-hyperchain"] = 7
	m := NewManager(pub, cp, quietLogger())

	if err := m.Publish(context.Background(), "besc-hyperchain", "text"); err == nil {
		t.Fatal("expected send failure to surface")
	}
	if cp.ids["besc-hyperchain"] != 7 {
		t.Errorf("failed send must not change the recorded id, got %d", cp.ids["besc-hyperchain"])
	}
	if len(pub.pinned) != 0 {
		t.Errorf("nothing to pin after a failed send, got %v", pub.pinned)
	}
}
