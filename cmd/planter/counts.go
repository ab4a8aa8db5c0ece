package main

import (
	"fmt"

	"github.com/treemark/anchor/internal/config"
	"github.com/treemark/anchor/internal/influx"
	"github.com/treemark/anchor/internal/monitor"

	"github.com/spf13/cobra"
)

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Print session and point counts from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		sessions, err := st.CountSessions()
		if err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}
		points, err := st.CountPoints()
		if err != nil {
			return fmt.Errorf("failed to count points: %w", err)
		}

		fmt.Printf("sessions: %d\npoints:   %d\n", sessions, points)

		// Ship one diagnostics sample when InfluxDB is configured.
		if config.GetBool("influx.enabled") {
			im := influx.NewManager(zlog)
			if err := im.Connect(); err != nil {
				zlog.Warn().Err(err).Msg("InfluxDB connect failed")
			} else {
				defer im.Close()
				svc := monitor.NewService(monitor.Dependencies{
					Store:      st,
					Influx:     im,
					LogManager: logManager,
					Interval:   config.GetDuration("monitor.interval"),
				})
				if err := svc.Sample(); err != nil {
					zlog.Warn().Err(err).Msg("Diagnostics sample failed")
				}
			}
		}

		return nil
	},
}
