package main

import (
	"fmt"

	"github.com/treemark/anchor/internal/controller"
	"github.com/treemark/anchor/internal/database"
	"github.com/treemark/anchor/internal/geo"
	"github.com/treemark/anchor/internal/marker"
	"github.com/treemark/anchor/internal/store/gormstore"
	"github.com/treemark/anchor/pkg/core"

	"github.com/spf13/cobra"
)

var simulateAnchorPose string

// queuedPose is a scripted pose source for the simulation.
type queuedPose struct {
	poses []core.Position3D
}

func (q *queuedPose) CurrentWorldPose() (core.Position3D, bool) {
	if len(q.poses) == 0 {
		return core.Position3D{}, false
	}
	p := q.poses[0]
	q.poses = q.poses[1:]
	return p, true
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted calibrate/place/recover walkthrough against a throwaway store",
	RunE: func(cmd *cobra.Command, args []string) error {
		anchorPose, err := geo.Position3DFromString(simulateAnchorPose)
		if err != nil {
			return fmt.Errorf("bad --anchor-pose: %w", err)
		}

		db, err := database.GetSqliteDBStandalone("")
		if err != nil {
			return fmt.Errorf("failed to open in-memory store: %w", err)
		}
		st := gormstore.New(gormstore.Dependencies{DB: db, LogManager: logManager})
		if err := st.Init(); err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		pose := &queuedPose{poses: []core.Position3D{
			{X: 0, Y: 0, Z: 0}, // calibration at the marker
			{X: 1, Y: 0, Z: 0}, // Tree 1
			{X: 1, Y: 2, Z: 0}, // Tree 2
		}}
		ctrl := controller.New(controller.Dependencies{
			Store:      st,
			PoseSource: pose,
			LogManager: logManager,
		})

		m, err := marker.Decode([]byte(`{"id":"demo-plot","name":"Demo Plot","lat":48.21,"lon":16.37}`))
		if err != nil {
			return err
		}
		if err := ctrl.BindOrigin(m); err != nil {
			return err
		}
		if err := ctrl.Calibrate(); err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			lp, err := ctrl.PlacePoint()
			if err != nil {
				return err
			}
			fmt.Printf("placed %-8s at (%.1f, %.1f, %.1f)\n", lp.Name, lp.WorldPosition.X, lp.WorldPosition.Y, lp.WorldPosition.Z)
		}

		// Lose the origin, then recover anchored on Tree 2 observed at the
		// given pose.
		if err := ctrl.ResetCalibration(); err != nil {
			return err
		}
		fmt.Printf("calibration reset: %s\n", ctrl.Status().Message)

		if err := ctrl.RecoverFromKnownPointAt(2, anchorPose); err != nil {
			return err
		}
		fmt.Println("recovered layout:")
		for _, lp := range ctrl.LivePoints() {
			fmt.Printf("  %-8s at (%.1f, %.1f, %.1f)\n", lp.Name, lp.WorldPosition.X, lp.WorldPosition.Y, lp.WorldPosition.Z)
		}
		fmt.Printf("status: %s\n", ctrl.Status().Message)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateAnchorPose, "anchor-pose", "5,5,0", "current world position of Tree 2, as x,y,z")
}
