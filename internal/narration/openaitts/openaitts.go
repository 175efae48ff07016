// Package openaitts synthesizes narration with an OpenAI-compatible
// /v1/audio/speech endpoint and writes one audio file per utterance.
package openaitts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/chalkboard/internal/narration"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Voice      string
	Format     string
	OutDir     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai tts http %d: %s", e.StatusCode, e.Body)
}

type Synthesizer struct {
	baseURL string
	apiKey  string
	model   string
	voice   string
	format  string
	outDir  string
	hc      *http.Client
	log     *logger.Logger

	mu      sync.Mutex
	seq     int
	cancels map[int]context.CancelFunc
	files   []string
}

var _ narration.Synthesizer = (*Synthesizer)(nil)

func New(opts Options, log *logger.Logger) (*Synthesizer, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, errors.New("openaitts: output directory required")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("openaitts: %w", err)
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini-tts"
	}
	voice := strings.TrimSpace(opts.Voice)
	if voice == "" {
		voice = "alloy"
	}
	format := strings.TrimSpace(opts.Format)
	if format == "" {
		format = "mp3"
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Synthesizer{
		baseURL: base,
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		voice:   voice,
		format:  format,
		outDir:  opts.OutDir,
		hc:      hc,
		log:     log.With("component", "openaitts"),
		cancels: map[int]context.CancelFunc{},
	}, nil
}

func (s *Synthesizer) Available() bool { return s.apiKey != "" }

// Files lists the audio files written so far, in utterance order.
func (s *Synthesizer) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

func (s *Synthesizer) Speak(ctx context.Context, text string, v narration.Voice, cb narration.Callbacks) error {
	if !s.Available() {
		return errors.New("openaitts: missing api key")
	}
	uctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.cancels[id] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, id)
			s.mu.Unlock()
			cancel()
		}()
		if cb.OnStart != nil {
			cb.OnStart()
		}
		path, err := s.synthesize(uctx, id, text, v)
		if err != nil {
			if uctx.Err() != nil {
				err = narration.ErrInterrupted
			}
			if cb.OnError != nil {
				cb.OnError(err)
			}
			return
		}
		s.mu.Lock()
		s.files = append(s.files, path)
		s.mu.Unlock()
		s.log.Debug("narration audio written", "path", path)
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
	}()
	return nil
}

func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
}

func (s *Synthesizer) synthesize(ctx context.Context, id int, text string, v narration.Voice) (string, error) {
	body, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: s.format,
		Speed:          speed(v.Rate),
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	path := filepath.Join(s.outDir, fmt.Sprintf("narration-%03d.%s", id, s.format))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// speed maps a speech rate onto the endpoint's accepted range.
func speed(rate float64) float64 {
	switch {
	case rate <= 0:
		return 0
	case rate < 0.25:
		return 0.25
	case rate > 4:
		return 4
	}
	return rate
}
