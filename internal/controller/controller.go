// Package controller orchestrates calibration, point placement, and
// position recovery for one active plantation session. Exactly one
// controller is active at a time, bound to at most one origin marker.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/treemark/anchor/internal/logging"
	"github.com/treemark/anchor/internal/reconstruct"
	"github.com/treemark/anchor/internal/store"
	"github.com/treemark/anchor/pkg/core"

	"github.com/google/uuid"
)

// State is the calibration state of the active session.
type State int

const (
	StateUninitialized State = iota
	StateAwaitingOrigin
	StateCalibrated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingOrigin:
		return "awaiting_origin"
	case StateCalibrated:
		return "calibrated"
	default:
		return "unknown"
	}
}

// ErrPoseUnavailable is returned when the pose source has no current
// reading. Nothing changes; the user simply tries again.
var ErrPoseUnavailable = errors.New("no world pose available")

// ErrNoSession is returned when an operation needs a bound session and none
// is loaded.
var ErrNoSession = errors.New("no session bound")

// ErrInvalidState is returned when an operation is not valid in the current
// calibration state.
var ErrInvalidState = errors.New("operation not valid in current state")

// ErrInvalidPose is returned when a pose contains NaN or Inf components.
var ErrInvalidPose = errors.New("pose is not finite")

// PoseSource supplies the current device pose in world coordinates.
// ok is false when tracking is unavailable; the call never blocks.
type PoseSource interface {
	CurrentWorldPose() (pose core.Position3D, ok bool)
}

// LivePoint is one entry of the presentation-facing point list.
type LivePoint struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	WorldPosition core.Position3D `json:"worldPosition"`
}

// Status is the presentation-facing readiness snapshot.
type Status struct {
	State        State  `json:"state"`
	SurfaceCount int    `json:"surfaceCount"`
	Message      string `json:"message"`
	Ready        bool   `json:"ready"`
}

// Dependencies holds all dependencies for the controller.
type Dependencies struct {
	Store      store.Store
	PoseSource PoseSource
	LogManager *logging.SlogManager
}

// Controller is the session state machine. All operations serialize on one
// mutex: at most one placement or recovery is in flight, and the live point
// list is only ever derived from stored points plus the current reference
// frame.
type Controller struct {
	mu   sync.RWMutex
	deps Dependencies

	state     State
	session   *core.Session
	originPos core.Position3D
	live      []LivePoint
	surfaces  int

	metrics instruments
}

// New creates a controller in the Uninitialized state.
func New(deps Dependencies) *Controller {
	return &Controller{
		deps:    deps,
		state:   StateUninitialized,
		metrics: newInstruments(),
	}
}

// BindOrigin binds the controller to a scanned origin marker, loading the
// existing session for it or creating a new one. Moves to AwaitingOrigin.
// A fresh scan of a known marker never overwrites the stored session
// metadata; the stored record wins.
func (c *Controller) BindOrigin(m core.MarkerData) error {
	if err := m.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUninitialized {
		return fmt.Errorf("%w: bindOrigin from %s", ErrInvalidState, c.state)
	}

	session, err := c.deps.Store.GetByOriginID(m.ID)
	if errors.Is(err, store.ErrSessionNotFound) {
		now := time.Now().UTC()
		session = &core.Session{
			SessionID:   uuid.NewString(),
			OriginID:    m.ID,
			DisplayName: m.Name,
			Latitude:    m.Lat,
			Longitude:   m.Lon,
			RawPayload:  m.Raw,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := c.deps.Store.Create(session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		c.log("BindOrigin", fmt.Sprintf("Created session for origin %s", m.ID), "INFO")
	} else if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	} else {
		c.log("BindOrigin", fmt.Sprintf("Loaded session for origin %s with %d points", m.ID, len(session.Points)), "INFO")
	}

	c.session = session
	c.live = nil
	c.state = StateAwaitingOrigin
	return nil
}

// Calibrate records the current pose as the origin reference frame.
// Valid only in AwaitingOrigin. If the session has stored points they are
// restored relative to the origin into the live list.
func (c *Controller) Calibrate() error {
	pose, ok := c.deps.PoseSource.CurrentWorldPose()
	if !ok {
		return ErrPoseUnavailable
	}
	return c.ForceCalibrate(pose)
}

// ForceCalibrate is the manual override: calibrate at an externally supplied
// origin pose, e.g. when the locator has already resolved the marker.
func (c *Controller) ForceCalibrate(originPose core.Position3D) error {
	if !originPose.IsFinite() {
		return ErrInvalidPose
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingOrigin {
		return fmt.Errorf("%w: calibrate from %s", ErrInvalidState, c.state)
	}

	c.originPos = originPose
	c.rebuildLive(reconstruct.RestoreFromOrigin(c.session.Points, originPose))
	c.state = StateCalibrated

	c.metrics.calibrations.Add(context.Background(), 1)
	c.log("Calibrate", fmt.Sprintf("Calibrated origin %s, restored %d points", c.session.OriginID, len(c.live)), "INFO")
	return nil
}

// PlacePoint plants a marker at the current pose: builds the point, appends
// it to the store, and only then extends the live list. Valid only in
// Calibrated. A failed store append leaves the live list untouched.
func (c *Controller) PlacePoint() (LivePoint, error) {
	pose, ok := c.deps.PoseSource.CurrentWorldPose()
	if !ok {
		return LivePoint{}, ErrPoseUnavailable
	}
	return c.PlacePointAt(pose)
}

// PlacePointAt plants a marker at an externally supplied pose.
func (c *Controller) PlacePointAt(pose core.Position3D) (LivePoint, error) {
	if !pose.IsFinite() {
		return LivePoint{}, ErrInvalidPose
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCalibrated {
		return LivePoint{}, fmt.Errorf("%w: placePoint from %s", ErrInvalidState, c.state)
	}

	var previous *core.ResolvedPoint
	if last := c.session.LastPoint(); last != nil {
		previous = &core.ResolvedPoint{
			Point:         *last,
			WorldPosition: c.live[len(c.live)-1].WorldPosition,
		}
	}

	id := c.session.NextPointID()
	point := core.BuildPoint(id, core.DefaultPointName(id), pose, c.originPos, previous, time.Now().UTC())

	// The durable append must be confirmed before the live list changes;
	// otherwise a store failure would leave the two diverged.
	if err := c.deps.Store.AppendPoint(c.session.OriginID, point); err != nil {
		return LivePoint{}, fmt.Errorf("failed to append point: %w", err)
	}

	c.session.Points = append(c.session.Points, point)
	c.session.UpdatedAt = time.Now().UTC()
	lp := LivePoint{ID: point.ID, Name: point.Name, WorldPosition: pose}
	c.live = append(c.live, lp)

	c.metrics.pointsPlaced.Add(context.Background(), 1)
	c.log("PlacePoint", fmt.Sprintf("Placed point %d in origin %s", point.ID, c.session.OriginID), "INFO")
	return lp, nil
}

// RecoverFromKnownPoint recovers the whole layout using the current pose as
// the known position of point knownID. Valid whenever a session is loaded.
func (c *Controller) RecoverFromKnownPoint(knownID uint) error {
	pose, ok := c.deps.PoseSource.CurrentWorldPose()
	if !ok {
		return ErrPoseUnavailable
	}
	return c.RecoverFromKnownPointAt(knownID, pose)
}

// RecoverFromKnownPointAt recovers the layout from an externally supplied
// known position, repopulates the live list, adopts the implied origin as
// the new reference frame, and forces the state to Calibrated.
func (c *Controller) RecoverFromKnownPointAt(knownID uint, knownPos core.Position3D) error {
	if !knownPos.IsFinite() {
		return ErrInvalidPose
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoSession
	}

	positions, impliedOrigin, err := reconstruct.Reconstruct(c.session.Points, knownID, knownPos)
	if err != nil {
		return err
	}

	c.originPos = impliedOrigin
	c.rebuildLive(positions)
	c.state = StateCalibrated

	c.metrics.recoveries.Add(context.Background(), 1)
	c.log("RecoverFromKnownPoint", fmt.Sprintf("Recovered %d points from point %d, origin implied at (%.2f, %.2f, %.2f)",
		len(c.live), knownID, impliedOrigin.X, impliedOrigin.Y, impliedOrigin.Z), "INFO")
	return nil
}

// ResetCalibration drops the reference frame and live list, reloads the
// session from the store, and returns to AwaitingOrigin. Stored points are
// unaffected.
func (c *Controller) ResetCalibration() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCalibrated {
		return fmt.Errorf("%w: resetCalibration from %s", ErrInvalidState, c.state)
	}

	session, err := c.deps.Store.GetByOriginID(c.session.OriginID)
	if err != nil {
		return fmt.Errorf("failed to reload session: %w", err)
	}

	c.session = session
	c.live = nil
	c.originPos = core.Position3D{}
	c.state = StateAwaitingOrigin

	c.log("ResetCalibration", fmt.Sprintf("Reset calibration for origin %s", session.OriginID), "INFO")
	return nil
}

// LivePoints returns a copy of the current live point list in insertion order.
func (c *Controller) LivePoints() []LivePoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LivePoint, len(c.live))
	copy(out, c.live)
	return out
}

// Session returns a copy of the active session, or nil if none is bound.
func (c *Controller) Session() *core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	s.Points = append([]core.PlantedPoint(nil), c.session.Points...)
	return &s
}

// SetSurfaceCount records the detected-surface count reported by the
// tracking collaborator. Informational pass-through.
func (c *Controller) SetSurfaceCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaces = n
}

// Status returns the presentation-facing status snapshot.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		State:        c.state,
		SurfaceCount: c.surfaces,
		Ready:        c.state == StateCalibrated,
	}
	switch c.state {
	case StateUninitialized:
		s.Message = "Scan an origin marker to begin"
	case StateAwaitingOrigin:
		s.Message = fmt.Sprintf("Origin %s bound, waiting for calibration", c.session.OriginID)
	case StateCalibrated:
		s.Message = fmt.Sprintf("Ready, %d points resolved", len(c.live))
	}
	return s
}

// rebuildLive replaces the live list from resolved positions, preserving the
// stored insertion order. Caller holds the write lock.
func (c *Controller) rebuildLive(positions map[uint]core.Position3D) {
	c.live = c.live[:0]
	for _, p := range c.session.Points {
		c.live = append(c.live, LivePoint{
			ID:            p.ID,
			Name:          p.Name,
			WorldPosition: positions[p.ID],
		})
	}
}

func (c *Controller) log(functionName, data, level string) {
	if c.deps.LogManager != nil {
		c.deps.LogManager.WriteLog("controller:"+functionName, data, level)
	}
}
