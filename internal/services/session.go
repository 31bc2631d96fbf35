package services

import (
	"context"
	"log"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/ports"
	"sync"
	"time"
)

// Default distance below which guidance is forwarded to the sink.
const DefaultVoiceThresholdMeters = 30.0

const arrivalText = "You have arrived at your destination"

type SessionConfig struct {
	Mode                 domain.TravelMode
	VoiceThresholdMeters float64
	Retry                RetryPolicy
}

// NavigationSession is the single logical driver of one ProgressTracker.
//
// Every tracker call happens under mu, so fixes are processed one at a time
// and never overlap a route swap. Route requests run on their own goroutine;
// each one is tagged with a generation and only the newest generation may
// install its result (last request wins). A newer request, SetRoute or Clear
// cancels the older in-flight request.
type NavigationSession struct {
	id        string
	gateway   *RouteGateway
	sink      ports.GuidanceSink
	publisher ports.EventPublisher
	cfg       SessionConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu              sync.Mutex
	tracker         *ProgressTracker
	generation      uint64
	cancelInFlight  context.CancelFunc
	lastSpokenIndex int
	arrivalSpoken   bool
}

// NewNavigationSession builds a session. sink and publisher may be nil.
func NewNavigationSession(
	parent context.Context,
	id string,
	gateway *RouteGateway,
	sink ports.GuidanceSink,
	publisher ports.EventPublisher,
	cfg SessionConfig,
) *NavigationSession {
	if cfg.Mode == "" {
		cfg.Mode = domain.Pedestrian
	}
	if cfg.VoiceThresholdMeters <= 0 {
		cfg.VoiceThresholdMeters = DefaultVoiceThresholdMeters
	}

	ctx, cancel := context.WithCancel(parent)
	return &NavigationSession{
		id:              id,
		gateway:         gateway,
		sink:            sink,
		publisher:       publisher,
		cfg:             cfg,
		ctx:             ctx,
		cancel:          cancel,
		tracker:         NewProgressTracker(),
		lastSpokenIndex: -1,
	}
}

func (s *NavigationSession) ID() string { return s.id }

// RequestRoute starts an asynchronous route request and returns its
// generation. done receives true if the result was installed, false if it
// failed or was superseded, and is then closed.
func (s *NavigationSession) RequestRoute(waypoints []domain.GeoPoint) (generation uint64, done <-chan bool) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancelInFlight != nil {
		s.cancelInFlight()
	}
	reqCtx, cancel := context.WithCancel(s.ctx)
	s.cancelInFlight = cancel
	s.mu.Unlock()

	wps := append([]domain.GeoPoint(nil), waypoints...)
	out := make(chan bool, 1)

	go func() {
		defer close(out)
		defer cancel()

		route, err := WithRetry(reqCtx, s.gateway, s.cfg.Retry, wps, s.cfg.Mode)
		out <- s.complete(gen, route, err)
	}()

	return gen, out
}

func (s *NavigationSession) complete(gen uint64, route *domain.Route, err error) bool {
	s.mu.Lock()
	if gen != s.generation {
		current := s.generation
		s.mu.Unlock()
		log.Printf("session=%s route result discarded gen=%d current=%d", s.id, gen, current)
		return false
	}
	s.cancelInFlight = nil

	if err != nil {
		s.mu.Unlock()
		log.Printf("session=%s route request failed gen=%d err=%v", s.id, gen, err)
		s.publish(domain.SessionEvent{Type: domain.EventRouteFailed, Generation: gen, Error: err.Error()})
		return false
	}

	s.installLocked(route)
	s.mu.Unlock()

	log.Printf("session=%s route installed gen=%d points=%d", s.id, gen, len(route.Points))
	s.publish(domain.SessionEvent{Type: domain.EventRouteInstalled, Generation: gen})
	return true
}

// SetRoute installs a route directly, superseding any in-flight request.
func (s *NavigationSession) SetRoute(route *domain.Route) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.stopInFlightLocked()
	s.installLocked(route)
	s.mu.Unlock()

	s.publish(domain.SessionEvent{Type: domain.EventRouteInstalled, Generation: gen})
	return gen
}

// Clear drops the active route and supersedes any in-flight request.
func (s *NavigationSession) Clear() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.stopInFlightLocked()
	s.tracker.Clear()
	s.lastSpokenIndex = -1
	s.arrivalSpoken = false
	s.mu.Unlock()

	s.publish(domain.SessionEvent{Type: domain.EventRouteCleared, Generation: gen})
}

// Update feeds one fix to the tracker. ok is false when no route is active.
// Guidance is forwarded to the sink once per target point when the traveler
// is closer than the voice threshold, and once on arrival.
func (s *NavigationSession) Update(ctx context.Context, fix domain.Fix) (domain.NavigationInfo, bool) {
	info, ok, gen, speak := s.advance(fix)
	if !ok {
		return info, false
	}

	snapshot := info
	s.publish(domain.SessionEvent{Type: domain.EventGuidance, Generation: gen, Info: &snapshot})

	if speak != "" && s.sink != nil {
		if err := s.sink.Speak(ctx, speak); err != nil {
			log.Printf("session=%s guidance sink failed: %v", s.id, err)
		}
		s.publish(domain.SessionEvent{Type: domain.EventSpeak, Generation: gen, Text: speak})
	}

	return info, true
}

// advance runs the tracker under the session lock and decides whether the
// resulting guidance should be spoken.
func (s *NavigationSession) advance(fix domain.Fix) (info domain.NavigationInfo, ok bool, gen uint64, speak string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok = s.tracker.Update(fix.Point())
	gen = s.generation
	if !ok {
		return info, false, gen, ""
	}

	switch {
	case info.Arrived:
		if !s.arrivalSpoken {
			s.arrivalSpoken = true
			speak = arrivalText
		}
	case info.DistanceToNext < s.cfg.VoiceThresholdMeters && info.CurrentIndex != s.lastSpokenIndex:
		s.lastSpokenIndex = info.CurrentIndex
		speak = info.Instruction
	}
	return info, true, gen, speak
}

// Route returns the active route, or nil.
func (s *NavigationSession) Route() *domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Route()
}

func (s *NavigationSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Close cancels every in-flight request of the session and closes its sink
// when the sink supports it.
func (s *NavigationSession) Close() {
	s.cancel()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
}

func (s *NavigationSession) installLocked(route *domain.Route) {
	s.tracker.SetRoute(route)
	s.lastSpokenIndex = -1
	s.arrivalSpoken = false
}

func (s *NavigationSession) stopInFlightLocked() {
	if s.cancelInFlight != nil {
		s.cancelInFlight()
		s.cancelInFlight = nil
	}
}

func (s *NavigationSession) publish(ev domain.SessionEvent) {
	if s.publisher == nil {
		return
	}
	ev.SessionID = s.id
	ev.At = time.Now()
	s.publisher.Publish(ev)
}
