package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"pedestrian-nav-service/internal/adapters/fixsource"
	"pedestrian-nav-service/internal/adapters/guidance"
	"pedestrian-nav-service/internal/adapters/routing"
	"pedestrian-nav-service/internal/config"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"pedestrian-nav-service/internal/ports"
	"pedestrian-nav-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// walkFile describes one simulated walk.
type walkFile struct {
	Waypoints []struct {
		Lat float64 `yaml:"lat"`
		Lon float64 `yaml:"lon"`
	} `yaml:"waypoints"`
	StepMeters   float64 `yaml:"stepMeters"`
	JitterMeters float64 `yaml:"jitterMeters"`
	IntervalMS   int     `yaml:"intervalMS"`
	Seed         int64   `yaml:"seed"`
}

func loadWalk(path string) (walkFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return walkFile{}, fmt.Errorf("load walk: %w", err)
	}

	w := walkFile{StepMeters: 5, IntervalMS: 200}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return walkFile{}, fmt.Errorf("load walk: parse %q: %w", path, err)
	}
	return w, nil
}

// printer writes session events to stdout.
type printer struct{}

func (printer) Publish(ev domain.SessionEvent) {
	switch ev.Type {
	case domain.EventGuidance:
		i := ev.Info
		fmt.Printf("idx=%-4d next=%-9s bearing=%6.1f remaining=%-9s %s\n",
			i.CurrentIndex, services.FormatDistance(i.DistanceToNext), i.BearingToNext,
			services.FormatDistance(i.RemainingDistance), i.Instruction)
	case domain.EventSpeak:
		fmt.Printf(">>> %s\n", ev.Text)
	case domain.EventRouteFailed:
		fmt.Printf("route failed: %s\n", ev.Error)
	}
}

// walksim requests a route for the waypoints in a walk file and replays the
// returned polyline through a navigation session, printing the guidance.
func main() {
	obs.InitLogging()

	walkPath := flag.String("walk", "walk.yml", "walk description (YAML)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("NAV_CONFIG", "config.yml"))
	if err != nil {
		log.Fatal(err)
	}

	walk, err := loadWalk(*walkPath)
	if err != nil {
		log.Fatal(err)
	}

	provider, err := routing.NewProvider(routing.ProviderOptions{
		Name:        cfg.Routing.Provider,
		ORSAPIKey:   cfg.Routing.ORSAPIKey,
		ORSBaseURL:  cfg.Routing.ORSBaseURL,
		OSRMBaseURL: cfg.Routing.OSRMBaseURL,
		Timeout:     cfg.Routing.Timeout(),
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, walk, services.NewRouteGateway(provider), cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(ctx context.Context, walk walkFile, gateway *services.RouteGateway, cfg config.AppConfig) error {
	waypoints := make([]domain.GeoPoint, 0, len(walk.Waypoints))
	for _, w := range walk.Waypoints {
		waypoints = append(waypoints, domain.GeoPoint{Lat: w.Lat, Lon: w.Lon})
	}

	voice := guidance.NewInterruptingSink(guidance.LogVoice)
	defer voice.Close()

	session := services.NewNavigationSession(ctx, "walksim", gateway, voice, printer{}, services.SessionConfig{
		VoiceThresholdMeters: cfg.Guidance.VoiceThresholdMeters,
		Retry:                services.RetryPolicy{MaxAttempts: cfg.Routing.RetryAttempts},
	})
	defer session.Close()

	_, done := session.RequestRoute(waypoints)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ok := <-done:
		if !ok {
			return errors.New("walksim: no route")
		}
	}

	route := session.Route()
	log.Printf("route installed points=%d length=%s", route.Len(), services.FormatDistance(route.LengthFrom(0)))

	seed := walk.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var src ports.FixSource = &fixsource.Replay{
		Points:       route.Points,
		Interval:     time.Duration(walk.IntervalMS) * time.Millisecond,
		StepMeters:   walk.StepMeters,
		JitterMeters: walk.JitterMeters,
		Accuracy:     walk.JitterMeters,
		Rand:         rand.New(rand.NewSource(seed)),
	}

	g, gctx := errgroup.WithContext(ctx)
	fixes := src.Fixes(gctx)

	g.Go(func() error {
		for fix := range fixes {
			info, ok := session.Update(gctx, fix)
			if !ok {
				return errors.New("walksim: route dropped mid-walk")
			}
			if info.Arrived {
				return nil
			}
		}
		return gctx.Err()
	})

	return g.Wait()
}
