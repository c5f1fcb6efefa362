package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	websynth "github.com/jurgenbelien/websynth-go"
	"github.com/jurgenbelien/websynth-go/internal/config"
)

// defaultRenderSeconds is used by -render when -seconds is 0.
const defaultRenderSeconds = 4

// assignments collects repeated name=value flags.
type assignments []assignment

type assignment struct {
	name  string
	value float64
}

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, as := range *a {
		parts[i] = fmt.Sprintf("%s=%g", as.name, as.value)
	}
	return strings.Join(parts, ",")
}

func (a *assignments) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*a = append(*a, assignment{name: strings.TrimSpace(name), value: v})
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		sampleRate = flag.Int("sample-rate", 0, "output sample rate (default from config, 48000)")
		tempo      = flag.Float64("tempo", 0, "tempo in BPM (0 keeps the configured tempo)")
		seconds    = flag.Float64("seconds", 0, "stop after N seconds (0 = until interrupted)")
		renderPath = flag.String("render", "", "render the automation offline to this WAV file")
		sets       assignments
		relSets    assignments
	)
	flag.Var(&sets, "set", "set a control to a raw value, name=value (repeatable)")
	flag.Var(&relSets, "set-rel", "set a control to a relative position in [0, 1], name=r (repeatable)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *tempo > 0 {
		cfg.Tempo = *tempo
	}

	if *renderPath != "" {
		secs := *seconds
		if secs <= 0 {
			secs = defaultRenderSeconds
		}
		if err := render(cfg, sets, relSets, *renderPath, secs); err != nil {
			log.Fatal(err)
		}
		return
	}

	pl, err := websynth.NewPlayer(cfg.SampleRate, websynth.WithSynthOptions(websynth.WithSteps(cfg.Steps)))
	if err != nil {
		log.Fatal(err)
	}
	if err := configure(pl.Synth(), cfg, sets, relSets); err != nil {
		log.Fatal(err)
	}
	if err := play(pl, *seconds); err != nil {
		log.Fatal(err)
	}
}

func configure(s *websynth.Synth, cfg config.Config, sets, relSets assignments) error {
	if err := cfg.Apply(s); err != nil {
		return err
	}
	for _, as := range sets {
		if err := s.SetControl(as.name, as.value); err != nil {
			return fmt.Errorf("-set: %w", err)
		}
	}
	for _, as := range relSets {
		if err := s.SetControlRelative(as.name, as.value); err != nil {
			return fmt.Errorf("-set-rel: %w", err)
		}
	}
	return nil
}

func render(cfg config.Config, sets, relSets assignments, path string, seconds float64) error {
	s, err := websynth.NewOffline(websynth.WithSteps(cfg.Steps))
	if err != nil {
		return err
	}
	if err := configure(s, cfg, sets, relSets); err != nil {
		return err
	}
	samples, err := websynth.RenderAutomation(s, seconds, cfg.SampleRate)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := websynth.WriteWAV(f, samples, cfg.SampleRate, 2); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %.1fs of automation to %s", seconds, path)
	return nil
}

func play(pl *websynth.Player, seconds float64) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if seconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(seconds*float64(time.Second)))
		defer cancel()
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	events := pl.Synth().Watch()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := pl.Play(); err != nil {
			return err
		}
		<-ctx.Done()
		return pl.Stop()
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				fmt.Printf("step %d pitch %+.2f velocity %.2f at %.3fs\n", ev.Index, ev.Pitch, ev.Velocity, ev.Time)
			}
		}
	})
	g.Go(func() error {
		select {
		case sig := <-signalCh:
			log.Printf("caught signal %s: shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	return g.Wait()
}
