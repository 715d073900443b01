package pagescmd

import (
	"context"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
)

func TestDispatchUpdateComponentSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.createPage(t, "open-day")
	if err := NewAddComponentHandler(f.svc, nil).Execute(ctx, AddComponentCommand{PageID: page.ID, ComponentType: "hero"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	subs := NewHandlerSet(f.svc, nil).Subscribe()
	t.Cleanup(func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	})

	msg := UpdateComponentSettingsCommand{
		PageID:   page.ID,
		Index:    0,
		Settings: map[string]any{"headline": "Visit campus"},
	}
	if err := dispatcher.Dispatch(ctx, msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	err := dispatcher.Dispatch(ctx, RemoveComponentCommand{PageID: page.ID, Index: 7})
	if err == nil {
		t.Fatalf("expected index error through dispatcher")
	}

	stored, err := f.svc.GetPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ContentData[0].Settings["headline"] != "Visit campus" {
		t.Fatalf("expected updated settings, got %v", stored.ContentData[0].Settings)
	}
}
