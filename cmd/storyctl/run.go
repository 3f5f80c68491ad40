package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/milk9111/storyline/assets"
	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/ecs/entity"
	"github.com/milk9111/storyline/ecs/system"
	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/storyspec"
)

// scheduledEvent is an event sent into the simulation before a given frame.
type scheduledEvent struct {
	Frame   int
	Subject string
	Body    any
}

// parseEvent reads "subject@frame" or "subject=body@frame".
func parseEvent(s string) (scheduledEvent, error) {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return scheduledEvent{}, fmt.Errorf("event %q: want subject[=body]@frame", s)
	}
	frame, err := strconv.Atoi(s[at+1:])
	if err != nil || frame < 0 {
		return scheduledEvent{}, fmt.Errorf("event %q: bad frame %q", s, s[at+1:])
	}
	evt := scheduledEvent{Frame: frame, Subject: s[:at]}
	if subject, body, ok := strings.Cut(evt.Subject, "="); ok {
		evt.Subject, evt.Body = subject, body
	}
	if evt.Subject == "" {
		return scheduledEvent{}, fmt.Errorf("event %q: empty subject", s)
	}
	return evt, nil
}

type simulation struct {
	frames    int
	events    []scheduledEvent
	maxVoices int
	out       io.Writer
	log       *slog.Logger
	reg       *storyspec.Registry
}

func runCmd(a *app) *cobra.Command {
	var (
		frames      int
		events      []string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "run <story...>",
		Short: "Simulate stories headless and print transitions, messages and sounds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := &simulation{
				frames:    frames,
				maxVoices: a.cfg.MaxVoices,
				out:       cmd.OutOrStdout(),
				log:       a.log,
				reg:       a.reg,
			}
			for _, raw := range events {
				evt, err := parseEvent(raw)
				if err != nil {
					return err
				}
				sim.events = append(sim.events, evt)
			}

			specs := make([]*prefabs.StorySpec, 0, len(args))
			for _, arg := range args {
				spec, err := loadSpec(arg)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.MetricsAddr
			}
			if metricsAddr == "" {
				return sim.run(specs)
			}
			return serveMetrics(cmd.Context(), metricsAddr, a.log, func() error { return sim.run(specs) })
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 600, "number of frames to simulate")
	cmd.Flags().StringArrayVar(&events, "event", nil, "send an event, as subject[=body]@frame (repeatable)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address and keep serving after the run until interrupted")
	return cmd
}

func (s *simulation) run(specs []*prefabs.StorySpec) error {
	w := ecs.NewWorld()
	sounds := &recorder{kind: "sound", out: s.out}
	music := &recorder{kind: "music", out: s.out}
	stories := system.NewStorySystem(
		system.WithStoryLogger(s.log),
		system.WithAssetCheck(assets.Exists),
	)
	messages := system.NewMessageSystem(0)

	w.AddSystem(ecs.NewScheduler(system.NewAnimationSystem(), stories, system.NewPhysicsSystem(0)))
	w.AddSystem(system.NewAudioSystem(sounds, s.maxVoices, s.log))
	w.AddSystem(system.NewMusicSystem(music, nil, s.log))
	w.AddSystem(messages)
	w.AddSystem(system.NewTTLSystem())

	if _, err := entity.NewMusicPlayer(w, nil); err != nil {
		return err
	}
	if _, err := entity.NewSaveStore(w, ""); err != nil {
		return err
	}
	for _, spec := range specs {
		e, err := entity.NewStoryteller(w, spec, s.reg)
		if err != nil {
			return err
		}
		st, _ := ecs.Get(w, e, component.StoryComponent.Kind())
		fmt.Fprintf(s.out, "frame %4d  %s starts in %s\n", 0, spec.Name, st.Machine.Root().Name)
	}

	events := append([]scheduledEvent(nil), s.events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })

	for frame := 0; frame < s.frames; frame++ {
		for len(events) > 0 && events[0].Frame == frame {
			stories.Send(events[0].Subject, events[0].Body, 0)
			fmt.Fprintf(s.out, "frame %4d  event %s %v\n", frame, events[0].Subject, bodyText(events[0].Body))
			events = events[1:]
		}
		sounds.frame, music.frame = frame, frame

		w.Update()

		for _, evt := range w.Events().Peek() {
			switch evt.Type {
			case system.TransitionEventType:
				tr := evt.Data.(system.TransitionEvent)
				fmt.Fprintf(s.out, "frame %4d  %s: %s -> %s\n", frame, tr.Machine, tr.From, tr.To)
			case system.MessageEventType:
				if msg, ok := ecs.Get(w, evt.Data.(ecs.Entity), component.MessageComponent.Kind()); ok {
					fmt.Fprintf(s.out, "frame %4d  %s says %q\n", frame, msg.Speaker, msg.Text)
				}
			}
		}
	}

	alive := 0
	ecs.ForEach(w, component.StoryComponent.Kind(), func(_ ecs.Entity, st *component.Story) {
		alive++
		state := "<done>"
		if st.Machine.Active() != nil {
			state = st.Machine.Active().Name
		}
		fmt.Fprintf(s.out, "end         %s in %s\n", st.Spec, state)
	})
	if alive < len(specs) {
		fmt.Fprintf(s.out, "end         %d storytellers destroyed themselves\n", len(specs)-alive)
	}
	return nil
}

func bodyText(body any) string {
	if body == nil {
		return ""
	}
	return fmt.Sprint(body)
}

func serveMetrics(ctx context.Context, addr string, log *slog.Logger, run func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Info("storyctl: serving metrics", "addr", addr)

	if err := run(); err != nil {
		_ = srv.Close()
		return err
	}

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
