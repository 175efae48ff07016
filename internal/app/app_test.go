package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/chalkboard/internal/config"
	"github.com/yungbote/chalkboard/internal/narration"
	"github.com/yungbote/chalkboard/internal/playback"
	"github.com/yungbote/chalkboard/internal/ratelimit"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.HTTP.ShutdownTimeout = config.Duration{Duration: time.Second}
	cfg.Provider.Type = "none"
	return cfg
}

func TestPacingFromConfig(t *testing.T) {
	cfg := testConfig()
	if diff := cmp.Diff(playback.DefaultPacing(), Pacing(cfg)); diff != "" {
		t.Fatalf("pacing (-want +got):\n%s", diff)
	}
}

func TestVoiceFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Narration.Rate = 1.5
	want := narration.Voice{Rate: 1.5, Pitch: 1, Volume: 1}
	if got := Voice(cfg); got != want {
		t.Fatalf("voice=%+v", got)
	}
}

func TestNewLimiter(t *testing.T) {
	cfg := testConfig()
	l, closeFn, err := NewLimiter(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := l.(*ratelimit.Memory); !ok {
		t.Fatalf("limiter=%T", l)
	}

	cfg.RateLimit.Backend = "none"
	l, _, err = NewLimiter(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.(ratelimit.Unlimited); !ok {
		t.Fatalf("limiter=%T", l)
	}
}

func TestNewSynthesizer(t *testing.T) {
	cfg := testConfig()
	s, err := NewSynthesizer(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	timed, ok := s.(*narration.Timed)
	if !ok || timed.PerWord != cfg.Narration.PerWord.Duration {
		t.Fatalf("timed synth=%T %+v", s, s)
	}

	cfg.Narration.Mode = "silent"
	if s, _ = NewSynthesizer(cfg, nil); s.Available() {
		t.Fatalf("silent synth available: %T", s)
	}

	cfg.Narration.Mode = "openai"
	cfg.Narration.OutDir = t.TempDir()
	if _, err := NewSynthesizer(cfg, nil); err != nil {
		t.Fatalf("openai synth: %v", err)
	}
}

func TestNewWithoutProvider(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())
	if a.Generator.ProviderName() != "none" {
		t.Fatalf("provider=%s", a.Generator.ProviderName())
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
