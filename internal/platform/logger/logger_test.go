package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar(), redact: true}

	l.With("component", "test").Info("calling provider", "api_key", "sk-live", "topic", "photosynthesis")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key=%v", fields["api_key"])
	}
	if fields["topic"] != "photosynthesis" || fields["component"] != "test" {
		t.Fatalf("fields=%v", fields)
	}
}

func TestRedactionDisabled(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}
	l.Debug("x", "token", "abc")
	if got := logs.All()[0].ContextMap()["token"]; got != "abc" {
		t.Fatalf("token=%v", got)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("ignored", "k", 1)
}
