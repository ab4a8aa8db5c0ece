// Package monitor periodically samples store and controller diagnostics and
// ships them to InfluxDB.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/treemark/anchor/internal/controller"
	"github.com/treemark/anchor/internal/influx"
	"github.com/treemark/anchor/internal/logging"
	"github.com/treemark/anchor/internal/store"
)

// StatusSource exposes the controller's readiness snapshot.
type StatusSource interface {
	Status() controller.Status
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Store      store.Store
	Status     StatusSource
	Influx     *influx.Manager
	LogManager *logging.SlogManager
	Interval   time.Duration
}

// Service manages diagnostics monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	// Tickers reject non-positive intervals.
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the monitor loop is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start launches the sampling loop.
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.loop()
}

// Stop halts the sampling loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}

func (s *Service) loop() {
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if err := s.Sample(); err != nil {
				s.log("loop", fmt.Sprintf("Error sampling diagnostics: %v", err), "ERROR")
			}
		}
	}
}

// Sample collects one diagnostics snapshot and ships it. Usable
// synchronously from the CLI as well as from the loop.
func (s *Service) Sample() error {
	sessions, err := s.deps.Store.CountSessions()
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	points, err := s.deps.Store.CountPoints()
	if err != nil {
		return fmt.Errorf("failed to count points: %w", err)
	}

	fields := map[string]interface{}{
		"sessions": sessions,
		"points":   points,
	}
	tags := map[string]string{}

	if s.deps.Status != nil {
		status := s.deps.Status.Status()
		tags["state"] = status.State.String()
		fields["ready"] = status.Ready
		fields["surfaces"] = status.SurfaceCount
	}

	if s.deps.Influx != nil {
		s.deps.Influx.WritePoint("planter_status", tags, fields, time.Now().UTC())
	}

	s.log("Sample", fmt.Sprintf("sessions=%d points=%d", sessions, points), "DEBUG")
	return nil
}

func (s *Service) log(functionName, data, level string) {
	if s.deps.LogManager != nil {
		s.deps.LogManager.WriteLog("monitor:"+functionName, data, level)
	}
}
