package controller

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/treemark/anchor/internal/controller"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments holds the controller's counters. With no SDK installed these
// are no-ops, so the library never forces a metrics pipeline on its host.
type instruments struct {
	pointsPlaced metric.Int64Counter
	recoveries   metric.Int64Counter
	calibrations metric.Int64Counter
}

func newInstruments() instruments {
	m := meter()
	pointsPlaced, _ := m.Int64Counter("planter.points_placed",
		metric.WithDescription("Points planted and durably stored"))
	recoveries, _ := m.Int64Counter("planter.recoveries",
		metric.WithDescription("Successful position recoveries from a known point"))
	calibrations, _ := m.Int64Counter("planter.calibrations",
		metric.WithDescription("Origin calibrations"))
	return instruments{
		pointsPlaced: pointsPlaced,
		recoveries:   recoveries,
		calibrations: calibrations,
	}
}
