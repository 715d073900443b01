package di_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/logging/gologger"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

func TestContainerLogsSeedingThroughProvider(t *testing.T) {
	rec := newRecordingProvider()

	container, err := di.NewContainer(context.Background(), runtimeconfig.DefaultConfig(),
		di.WithLoggerProvider(rec),
		di.WithDefinitionsFS(definitionsFS()),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	entry := rec.find("definitions.seeded")
	if entry == nil {
		t.Fatalf("expected definitions.seeded log entry, got %#v", rec.entries)
	}
	if got := entry.fields["created"]; got != 2 {
		t.Fatalf("expected created=2, got %v", got)
	}
	if got := entry.fields["module"]; got != "pagebuilder.di" {
		t.Fatalf("expected module field pagebuilder.di, got %v", got)
	}

	ready := rec.find("container.ready")
	if ready == nil {
		t.Fatalf("expected container.ready log entry")
	}
	if got := ready.fields["storage"]; got != runtimeconfig.StorageProviderMemory {
		t.Fatalf("expected memory storage field, got %v", got)
	}
}

func TestContainerBuildsGoLoggerProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	container, err := di.NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected gologger provider, got %T", container.LoggerProvider())
	}
}

func TestContainerLeavesLoggingOffWithoutFeature(t *testing.T) {
	container, err := di.NewContainer(context.Background(), runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.LoggerProvider() != nil {
		t.Fatalf("expected no logger provider, got %T", container.LoggerProvider())
	}
}

type recordingProvider struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{entries: []recordedEntry{}}
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{
		provider: p,
		fields: map[string]any{
			"logger": name,
		},
	}
}

func (p *recordingProvider) record(entry recordedEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

var _ interfaces.Logger = (*recordingLogger)(nil)

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := cloneFields(l.fields)
	for key, value := range fields {
		merged[key] = value
	}
	return &recordingLogger{provider: l.provider, fields: merged}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return &recordingLogger{provider: l.provider, fields: cloneFields(l.fields)}
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	fields := cloneFields(l.fields)
	for i := 0; i+1 < len(args); i += 2 {
		key, _ := args[i].(string)
		if key == "" {
			continue
		}
		fields[key] = args[i+1]
	}
	l.provider.record(recordedEntry{level: level, msg: msg, fields: fields})
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}
