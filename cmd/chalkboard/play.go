package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/chalkboard/internal/app"
	"github.com/yungbote/chalkboard/internal/canvas/raster"
	"github.com/yungbote/chalkboard/internal/client"
	"github.com/yungbote/chalkboard/internal/config"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/generation"
	"github.com/yungbote/chalkboard/internal/interpreter"
	"github.com/yungbote/chalkboard/internal/narration"
	"github.com/yungbote/chalkboard/internal/narration/openaitts"
	"github.com/yungbote/chalkboard/internal/orchestrator"
	"github.com/yungbote/chalkboard/internal/palette"
	"github.com/yungbote/chalkboard/internal/platform/logger"
	"github.com/yungbote/chalkboard/internal/platform/shutdown"
	"github.com/yungbote/chalkboard/internal/playback"
)

type playOptions struct {
	server    string
	out       string
	framesDir string
	narration string
	noPacing  bool
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play <topic>",
		Short: "Generate a diagram for a topic and render it to PNG",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, root.cfg, opts, strings.Join(args, " "))
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "", "fetch instructions from a chalkboard server instead of generating locally")
	f.StringVarP(&opts.out, "out", "o", "chalkboard.png", "final image path")
	f.StringVar(&opts.framesDir, "frames", "", "directory for one PNG per applied step")
	f.StringVar(&opts.narration, "narration", "", "narration mode: silent, timed, or openai (overrides config)")
	f.BoolVar(&opts.noPacing, "no-pacing", false, "play without delays between steps")
	return cmd
}

// localSource adapts the generation service to the orchestrator.
type localSource struct {
	svc *generation.Service
	log *logger.Logger
}

func (s localSource) Generate(ctx context.Context, topic string) (diagram.Response, error) {
	res, err := s.svc.Generate(ctx, topic)
	if err != nil {
		return diagram.Response{}, err
	}
	if res.Source == generation.SourceFallback {
		s.log.Info("using built-in diagram", "topic", topic, "cause", res.Cause)
	}
	return res.Response, nil
}

func runPlay(cmd *cobra.Command, cfg *config.Config, opts *playOptions, topic string) error {
	if opts.narration != "" {
		mode := strings.ToLower(strings.TrimSpace(opts.narration))
		switch mode {
		case "silent", "timed", "openai":
		default:
			return fmt.Errorf("invalid --narration %q", opts.narration)
		}
		cfg.Narration.Mode = mode
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	ctx, stop := shutdown.NotifyContext(cmd.Context(), log)
	defer stop()

	var source orchestrator.Source
	if opts.server != "" {
		c, err := client.New(client.Options{BaseURL: opts.server, Timeout: cfg.Provider.Timeout.Duration})
		if err != nil {
			return err
		}
		source = c
	} else {
		svc, err := app.NewGenerator(ctx, cfg, log)
		if err != nil {
			return err
		}
		source = localSource{svc: svc, log: log}
	}

	cv, err := raster.New(raster.Options{
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		Padding:    cfg.Canvas.Padding,
		Background: palette.Normalize(cfg.Canvas.Background),
		FontPath:   cfg.Canvas.FontPath,
		MonoPath:   cfg.Canvas.MonoPath,
	}, log)
	if err != nil {
		return err
	}

	synth, err := app.NewSynthesizer(cfg, log)
	if err != nil {
		return err
	}
	speaker := narration.NewSpeaker(synth, app.Voice(cfg), log)

	if opts.framesDir != "" {
		if err := os.MkdirAll(opts.framesDir, 0o755); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	observe := func(ev playback.Event) {
		switch ev.Type {
		case playback.EventNarration:
			fmt.Fprintf(out, "> %s\n", ev.Text)
		case playback.EventFailed:
			fmt.Fprintf(cmd.ErrOrStderr(), "step %d (%s) failed: %v\n", ev.Index, ev.Kind, ev.Err)
		case playback.EventApplied:
			if opts.framesDir == "" {
				return
			}
			path := filepath.Join(opts.framesDir, fmt.Sprintf("step-%03d.png", ev.Index))
			if err := cv.SavePNG(path); err != nil {
				log.Warn("frame save failed", "path", path, "error", err)
			}
		}
	}

	pacing := app.Pacing(cfg)
	if opts.noPacing {
		pacing = playback.NoPacing()
	}
	seq := playback.New(cv, interpreter.New(cv, log), speaker, pacing,
		playback.WithLogger(log),
		playback.WithObserver(observe),
	)

	res, err := orchestrator.New(source, seq, cv, log).Submit(ctx, topic)
	if err != nil {
		var uerr *orchestrator.UserError
		if errors.As(err, &uerr) {
			return errors.New(uerr.Message)
		}
		return err
	}
	if err := cv.SavePNG(opts.out); err != nil {
		return fmt.Errorf("save %s: %w", opts.out, err)
	}

	rep := res.Report
	fmt.Fprintf(out, "%s: %d steps, %d shapes, %d skipped, %d failed -> %s\n",
		res.Topic, rep.Steps, rep.Created, len(rep.Skipped), len(rep.Errors), opts.out)
	if tts, ok := synth.(*openaitts.Synthesizer); ok {
		for _, f := range tts.Files() {
			fmt.Fprintf(out, "narration audio: %s\n", f)
		}
	}
	return nil
}
