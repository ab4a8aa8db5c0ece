package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/treemark/anchor/internal/geo"

	"github.com/spf13/cobra"
)

var exportGzip bool

var exportCmd = &cobra.Command{
	Use:   "export <origin-id>",
	Short: "Export a session and its points as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		originID := args[0]

		st, err := openStore()
		if err != nil {
			return err
		}

		txStart := time.Now()
		session, err := st.GetByOriginID(originID)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", originID, err)
		}

		out := map[string]any{
			"sessionId":   session.SessionID,
			"originId":    session.OriginID,
			"displayName": session.DisplayName,
			"latitude":    session.Latitude,
			"longitude":   session.Longitude,
			"createdAt":   session.CreatedAt,
			"updatedAt":   session.UpdatedAt,
			"points":      session.Points,
		}

		if wkt, err := geo.MarkerLocationWKT(session.Latitude, session.Longitude); err == nil {
			out["location3857"] = wkt
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		filename := fmt.Sprintf("%s.json", originID)
		if exportGzip {
			filename += ".gz"
		}

		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", filename, err)
		}
		defer f.Close() //nolint:errcheck

		if exportGzip {
			gz := gzip.NewWriter(f)
			if _, err := gz.Write(data); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
			if err := gz.Close(); err != nil {
				return fmt.Errorf("failed to finish %s: %w", filename, err)
			}
		} else {
			if _, err := f.Write(data); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
		}

		fmt.Printf("Exported %d points to %s in %s\n", len(session.Points), filename, time.Since(txStart))
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "gzip the exported file")
}
