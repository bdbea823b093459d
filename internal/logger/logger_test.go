package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env)
			if err != nil {
				t.Fatalf("NewLogger(%s): %v", env, err)
			}
			_ = l.Sync()
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core).With(zap.String("request_id", "req-1"))

	ctx := ContextWithLogger(context.Background(), l)
	FromContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["request_id"] != "req-1" {
		t.Errorf("request_id not carried: %v", entries[0].ContextMap())
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewNop()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback outside a request")
	}
	reqLogger := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), reqLogger)
	if FromContextOr(ctx, fallback) != reqLogger {
		t.Error("expected request logger")
	}
}

func TestFromContext_Default(t *testing.T) {
	FromContext(context.Background()).Info("dropped") // nop logger, must not panic
}

func TestEvent_Annotate(t *testing.T) {
	ctx, ev := ContextWithEvent(context.Background())

	Annotate(ctx, zap.String("story_id", "abc"))
	Annotate(ctx, zap.Int("search_results", 3), zap.Bool("indexed", true))

	fields := ev.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Key != "story_id" || fields[0].String != "abc" {
		t.Errorf("first field = %+v", fields[0])
	}

	// returned slice is a copy
	fields[0].Key = "changed"
	if ev.Fields()[0].Key != "story_id" {
		t.Error("Fields must not expose internal storage")
	}
}

func TestAnnotate_NoEvent(t *testing.T) {
	Annotate(context.Background(), zap.String("k", "v")) // must not panic
}
