package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	dist := [][]float64{
		{0, 1000, 2500},
		{1000, 0, 1234},
		{2500, 1234, 0},
	}
	cost := func(from, to int) float64 { return dist[from][to] }
	labels := []string{"Depot", "Market St", "Pine Ave"}

	plan := Format([][]int{{0, 1, 2, 0}, {0, 0}}, cost, labels, Options{})

	require.Len(t, plan.Vehicles, 2)
	assert.Equal(t, "km", plan.Unit)
	assert.InDelta(t, 4.73, plan.Vehicles[0].Distance, 1e-9)
	assert.InDelta(t, 0, plan.Vehicles[1].Distance, 1e-9)
	assert.InDelta(t, 4.73, plan.Total, 1e-9)

	steps := plan.Vehicles[0].Steps
	require.Len(t, steps, 4)
	assert.Equal(t, "Market St", steps[1].Label)
	assert.InDelta(t, 2.23, steps[2].Cumulative, 1e-9)
	assert.True(t, steps[3].Return)
	assert.False(t, steps[0].Return)

	want := "Optimized Routes:\n" +
		"\nRoute for vehicle 0:\n" +
		"1. Depot\n" +
		"2. Market St\n" +
		"3. Pine Ave\n" +
		"4. Depot (Return to Start)\n" +
		"Distance of route: 4.73 km\n" +
		"\nRoute for vehicle 1:\n" +
		"1. Depot\n" +
		"2. Depot (Return to Start)\n" +
		"Distance of route: 0.00 km\n" +
		"\nTotal Distance of all routes: 4.73 km\n"
	assert.Equal(t, want, plan.Text)
}

func TestFormatSkipUnusedAndMissingLabels(t *testing.T) {
	cost := func(from, to int) float64 { return 10 }

	plan := Format([][]int{{0, 0}, {0, 3, 0}}, cost, []string{"Hub"}, Options{Divisor: 1, Unit: "m", SkipUnused: true})

	assert.NotContains(t, plan.Text, "Route for vehicle 0:")
	assert.Contains(t, plan.Text, "Route for vehicle 1:\n1. Hub\n2. stop 3\n3. Hub (Return to Start)\n")
	assert.Contains(t, plan.Text, "Total Distance of all routes: 20.00 m")
	assert.Len(t, plan.Vehicles, 2)
}
