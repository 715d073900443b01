package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

func TestNewProviderBuildsModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	logger := p.GetLogger("pagebuilder.pages")
	if logger == nil {
		t.Fatal("expected logger")
	}
	logger.(interfaces.FieldsLogger).WithFields(map[string]any{"page_id": "home"}).Debug("provider.ready")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestAdapterDelegatesAndClonesFields(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("trace")
	adapted.Debug("debug")
	adapted.Info("info")
	adapted.Warn("warn")
	adapted.Error("error")
	adapted.Fatal("fatal")

	fields := map[string]any{"component_type": "hero"}
	adapted.(interfaces.FieldsLogger).WithFields(fields)
	fields["component_type"] = "cta"
	if len(stub.fields) != 1 || stub.fields[0]["component_type"] != "hero" {
		t.Fatalf("expected cloned fields, got %#v", stub.fields)
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %#v", stub.contexts)
	}

	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(stub.calls))
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d: expected %q got %q", i, want[i], stub.calls[i])
		}
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}

func TestProviderCachesModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Format: "json"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	first := p.GetLogger("pagebuilder.editor")
	second := p.GetLogger(" pagebuilder.editor ")
	if first != second {
		t.Fatalf("expected cached logger for the same module")
	}
	if p.GetLogger("pagebuilder.pages") == first {
		t.Fatalf("expected distinct loggers per module")
	}
}

func TestNormalizeFocusExpandsShortNames(t *testing.T) {
	got := normalizeFocus([]string{"editor", " Pages ", "pagebuilder.storage", "", "editor", "pagebuilder"})
	want := []string{"pagebuilder.editor", "pagebuilder.pages", "pagebuilder.storage", "pagebuilder"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("focus %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
