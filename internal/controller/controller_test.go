package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/treemark/anchor/internal/store"
	"github.com/treemark/anchor/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory store.Store for controller tests.
type fakeStore struct {
	sessions  map[string]*core.Session
	appendErr error
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*core.Session{}}
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) GetByOriginID(originID string) (*core.Session, error) {
	s, ok := f.sessions[originID]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	cp := *s
	cp.Points = append([]core.PlantedPoint(nil), s.Points...)
	return &cp, nil
}

func (f *fakeStore) Create(session *core.Session) error {
	if _, ok := f.sessions[session.OriginID]; ok {
		return store.ErrDuplicateOrigin
	}
	cp := *session
	f.sessions[session.OriginID] = &cp
	return nil
}

func (f *fakeStore) AppendPoint(originID string, point core.PlantedPoint) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	s, ok := f.sessions[originID]
	if !ok {
		return store.ErrUnknownOrigin
	}
	s.Points = append(s.Points, point)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) DeleteSession(originID string) error {
	delete(f.sessions, originID)
	return nil
}

func (f *fakeStore) CountSessions() (int64, error) { return int64(len(f.sessions)), nil }

func (f *fakeStore) CountPoints() (int64, error) {
	var n int64
	for _, s := range f.sessions {
		n += int64(len(s.Points))
	}
	return n, nil
}

// stubPose is a scripted PoseSource. With no poses queued it reports
// tracking unavailable.
type stubPose struct {
	poses []core.Position3D
}

func (s *stubPose) CurrentWorldPose() (core.Position3D, bool) {
	if len(s.poses) == 0 {
		return core.Position3D{}, false
	}
	p := s.poses[0]
	s.poses = s.poses[1:]
	return p, true
}

func (s *stubPose) push(p ...core.Position3D) { s.poses = append(s.poses, p...) }

func testMarker() core.MarkerData {
	return core.MarkerData{ID: "plot-7", Name: "North Field", Lat: 48.21, Lon: 16.37}
}

func newTestController() (*Controller, *fakeStore, *stubPose) {
	fs := newFakeStore()
	pose := &stubPose{}
	c := New(Dependencies{Store: fs, PoseSource: pose})
	return c, fs, pose
}

func TestInitialState(t *testing.T) {
	c, _, _ := newTestController()

	status := c.Status()
	assert.Equal(t, StateUninitialized, status.State)
	assert.False(t, status.Ready)
	assert.Empty(t, c.LivePoints())
	assert.Nil(t, c.Session())
}

func TestBindOrigin_CreatesNewSession(t *testing.T) {
	c, fs, _ := newTestController()

	require.NoError(t, c.BindOrigin(testMarker()))

	assert.Equal(t, StateAwaitingOrigin, c.Status().State)
	n, err := fs.CountSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s := c.Session()
	require.NotNil(t, s)
	assert.NotEmpty(t, s.SessionID)
	assert.Equal(t, "plot-7", s.OriginID)
	assert.Equal(t, "North Field", s.DisplayName)
}

func TestBindOrigin_LoadsExistingSession(t *testing.T) {
	c, fs, _ := newTestController()
	fs.sessions["plot-7"] = &core.Session{
		SessionID:   "existing",
		OriginID:    "plot-7",
		DisplayName: "Stored Name",
		Points: []core.PlantedPoint{
			{ID: 1, Name: "Tree 1", OffsetFromOrigin: core.Position3D{X: 1}, OffsetFromPrevious: core.Position3D{X: 1}},
		},
	}

	// Re-scan with different metadata must not overwrite the stored record.
	m := testMarker()
	m.Name = "Reprinted Label"
	require.NoError(t, c.BindOrigin(m))

	s := c.Session()
	require.NotNil(t, s)
	assert.Equal(t, "existing", s.SessionID)
	assert.Equal(t, "Stored Name", s.DisplayName)
	require.Len(t, s.Points, 1)
}

func TestBindOrigin_RejectsInvalidMarker(t *testing.T) {
	c, _, _ := newTestController()

	err := c.BindOrigin(core.MarkerData{Name: "no id"})
	assert.ErrorIs(t, err, core.ErrInvalidMarkerData)
	assert.Equal(t, StateUninitialized, c.Status().State)
}

func TestBindOrigin_InvalidFromCalibrated(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())

	err := c.BindOrigin(testMarker())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCalibrate_PoseUnavailable(t *testing.T) {
	c, _, _ := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))

	err := c.Calibrate()
	assert.ErrorIs(t, err, ErrPoseUnavailable)
	assert.Equal(t, StateAwaitingOrigin, c.Status().State)
}

func TestCalibrate_RestoresExistingPoints(t *testing.T) {
	c, fs, pose := newTestController()
	fs.sessions["plot-7"] = &core.Session{
		SessionID: "existing",
		OriginID:  "plot-7",
		Points: []core.PlantedPoint{
			{ID: 1, Name: "Tree 1", OffsetFromOrigin: core.Position3D{X: 1}, OffsetFromPrevious: core.Position3D{X: 1}},
			{ID: 2, Name: "Tree 2", OffsetFromOrigin: core.Position3D{X: 1, Y: 2}, OffsetFromPrevious: core.Position3D{Y: 2}, PreviousPointID: 1},
		},
	}

	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{X: 10, Y: 10})
	require.NoError(t, c.Calibrate())

	live := c.LivePoints()
	require.Len(t, live, 2)
	assert.Equal(t, core.Position3D{X: 11, Y: 10}, live[0].WorldPosition)
	assert.Equal(t, core.Position3D{X: 11, Y: 12}, live[1].WorldPosition)
	assert.True(t, c.Status().Ready)
}

func TestPlacePoint_FullScenario(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))

	pose.push(core.Position3D{}) // origin at (0,0,0)
	require.NoError(t, c.Calibrate())

	pose.push(core.Position3D{X: 1})
	a, err := c.PlacePoint()
	require.NoError(t, err)
	assert.Equal(t, uint(1), a.ID)
	assert.Equal(t, "Tree 1", a.Name)

	pose.push(core.Position3D{X: 1, Y: 2})
	b, err := c.PlacePoint()
	require.NoError(t, err)
	assert.Equal(t, uint(2), b.ID)

	s := c.Session()
	require.Len(t, s.Points, 2)
	assert.Equal(t, core.Position3D{X: 1}, s.Points[0].OffsetFromOrigin)
	assert.Equal(t, core.OriginPointID, s.Points[0].PreviousPointID)
	assert.Equal(t, core.Position3D{Y: 2}, s.Points[1].OffsetFromPrevious)
	assert.Equal(t, uint(1), s.Points[1].PreviousPointID)
	assert.Equal(t, 2.0, s.Points[1].DistanceFromPrevious)
}

func TestPlacePoint_RequiresCalibration(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))

	pose.push(core.Position3D{X: 1})
	_, err := c.PlacePoint()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPlacePoint_FailedAppendLeavesLiveListUnchanged(t *testing.T) {
	c, fs, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())

	pose.push(core.Position3D{X: 1})
	_, err := c.PlacePoint()
	require.NoError(t, err)

	fs.appendErr = errors.New("disk full")
	pose.push(core.Position3D{X: 2})
	_, err = c.PlacePoint()
	require.Error(t, err)

	// Live list and session still reflect only the committed point.
	assert.Len(t, c.LivePoints(), 1)
	assert.Len(t, c.Session().Points, 1)
	n, _ := fs.CountPoints()
	assert.Equal(t, int64(1), n)

	// The operation is cheap to retry.
	fs.appendErr = nil
	pose.push(core.Position3D{X: 2})
	lp, err := c.PlacePoint()
	require.NoError(t, err)
	assert.Equal(t, uint(2), lp.ID)
	assert.Len(t, c.LivePoints(), 2)
}

func TestPlacePoint_RejectsNonFinitePose(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())

	_, err := c.PlacePointAt(core.Position3D{X: nan()})
	assert.ErrorIs(t, err, ErrInvalidPose)
	assert.Empty(t, c.LivePoints())
}

func TestRecoverFromKnownPoint(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())

	pose.push(core.Position3D{X: 1})
	_, err := c.PlacePoint()
	require.NoError(t, err)
	pose.push(core.Position3D{X: 1, Y: 2})
	_, err = c.PlacePoint()
	require.NoError(t, err)

	// Simulate losing tracking: reset, then recover anchored on point 2
	// whose position is now observed at (5,5,0).
	require.NoError(t, c.ResetCalibration())
	assert.Equal(t, StateAwaitingOrigin, c.Status().State)
	assert.Empty(t, c.LivePoints())

	require.NoError(t, c.RecoverFromKnownPointAt(2, core.Position3D{X: 5, Y: 5}))
	assert.Equal(t, StateCalibrated, c.Status().State)

	live := c.LivePoints()
	require.Len(t, live, 2)
	assert.InDelta(t, 5.0, live[0].WorldPosition.X, 1e-9)
	assert.InDelta(t, 3.0, live[0].WorldPosition.Y, 1e-9)
	assert.InDelta(t, 5.0, live[1].WorldPosition.X, 1e-9)
	assert.InDelta(t, 5.0, live[1].WorldPosition.Y, 1e-9)

	// Implied origin (4,3,0) becomes the new reference frame: a point
	// placed at (4,4,0) is stored with offsetFromOrigin (0,1,0).
	pose.push(core.Position3D{X: 4, Y: 4})
	_, err = c.PlacePoint()
	require.NoError(t, err)
	s := c.Session()
	assert.InDelta(t, 0.0, s.Points[2].OffsetFromOrigin.X, 1e-9)
	assert.InDelta(t, 1.0, s.Points[2].OffsetFromOrigin.Y, 1e-9)
}

func TestRecoverFromKnownPoint_UnknownID(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())

	err := c.RecoverFromKnownPointAt(42, core.Position3D{X: 1})
	require.Error(t, err)
	assert.Equal(t, StateCalibrated, c.Status().State)
}

func TestRecoverFromKnownPoint_NoSession(t *testing.T) {
	c, _, _ := newTestController()
	err := c.RecoverFromKnownPointAt(1, core.Position3D{})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResetCalibration_PointsSurvive(t *testing.T) {
	c, _, pose := newTestController()
	require.NoError(t, c.BindOrigin(testMarker()))
	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())
	pose.push(core.Position3D{X: 1})
	_, err := c.PlacePoint()
	require.NoError(t, err)

	require.NoError(t, c.ResetCalibration())

	s := c.Session()
	require.NotNil(t, s)
	require.Len(t, s.Points, 1)
	assert.Empty(t, c.LivePoints())

	// Recalibrating at a new origin position restores the layout there.
	pose.push(core.Position3D{X: 100})
	require.NoError(t, c.Calibrate())
	live := c.LivePoints()
	require.Len(t, live, 1)
	assert.Equal(t, core.Position3D{X: 101}, live[0].WorldPosition)
}

func TestStatusMessages(t *testing.T) {
	c, _, pose := newTestController()
	assert.Contains(t, c.Status().Message, "Scan an origin marker")

	require.NoError(t, c.BindOrigin(testMarker()))
	assert.Contains(t, c.Status().Message, "plot-7")

	pose.push(core.Position3D{})
	require.NoError(t, c.Calibrate())
	assert.Contains(t, c.Status().Message, "Ready")

	c.SetSurfaceCount(4)
	assert.Equal(t, 4, c.Status().SurfaceCount)
}

func nan() float64 {
	var zero float64
	return zero / zero
}
