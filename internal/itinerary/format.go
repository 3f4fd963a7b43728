// Package itinerary renders solved routes for people and for downstream
// consumers. It carries no feasibility logic.
package itinerary

import (
	"fmt"
	"math"
	"strings"
)

// Step is one visit in a vehicle itinerary.
type Step struct {
	Number int    `json:"number"`
	Stop   int    `json:"stop"`
	Label  string `json:"label"`
	// Cumulative is the distance travelled on arrival, in display units.
	Cumulative float64 `json:"cumulative"`
	Return     bool    `json:"return,omitempty"`
}

type VehicleItinerary struct {
	Vehicle  int     `json:"vehicle"`
	Steps    []Step  `json:"steps"`
	Distance float64 `json:"distance"`
}

type Plan struct {
	Text     string             `json:"text"`
	Vehicles []VehicleItinerary `json:"vehicles"`
	Total    float64            `json:"total"`
	Unit     string             `json:"unit"`
}

type Options struct {
	// Divisor converts arc costs to display units. Zero means 1000 (m to km).
	Divisor float64
	// Unit is the display unit label. Empty means "km".
	Unit string
	// Precision is the number of decimals shown. Zero means 2.
	Precision int
	// SkipUnused leaves depot-to-depot routes out of the text.
	SkipUnused bool
}

func (o Options) withDefaults() Options {
	if o.Divisor <= 0 {
		o.Divisor = 1000
	}
	if o.Unit == "" {
		o.Unit = "km"
	}
	if o.Precision <= 0 {
		o.Precision = 2
	}
	return o
}

// Format renders routes (depot-to-depot stop sequences) using cost for each
// arc and labels for each stop index. Stops without a label print as their
// index.
func Format(routes [][]int, cost func(from, to int) float64, labels []string, opts Options) Plan {
	opts = opts.withDefaults()
	label := func(i int) string {
		if i >= 0 && i < len(labels) && labels[i] != "" {
			return labels[i]
		}
		return fmt.Sprintf("stop %d", i)
	}

	var b strings.Builder
	b.WriteString("Optimized Routes:\n")

	plan := Plan{Unit: opts.Unit, Vehicles: make([]VehicleItinerary, 0, len(routes))}
	var total float64
	for k, route := range routes {
		if len(route) == 0 {
			continue
		}
		vi := VehicleItinerary{Vehicle: k, Steps: make([]Step, 0, len(route))}

		var dist float64
		for i, stop := range route {
			if i > 0 {
				dist += cost(route[i-1], stop)
			}
			vi.Steps = append(vi.Steps, Step{
				Number:     i + 1,
				Stop:       stop,
				Label:      label(stop),
				Cumulative: round(dist/opts.Divisor, opts.Precision),
				Return:     i == len(route)-1 && i > 0,
			})
		}
		vi.Distance = round(dist/opts.Divisor, opts.Precision)
		total += dist
		plan.Vehicles = append(plan.Vehicles, vi)

		if opts.SkipUnused && len(route) <= 2 {
			continue
		}
		fmt.Fprintf(&b, "\nRoute for vehicle %d:\n", k)
		for _, st := range vi.Steps {
			if st.Return {
				fmt.Fprintf(&b, "%d. %s (Return to Start)\n", st.Number, st.Label)
				continue
			}
			fmt.Fprintf(&b, "%d. %s\n", st.Number, st.Label)
		}
		fmt.Fprintf(&b, "Distance of route: %.*f %s\n", opts.Precision, vi.Distance, opts.Unit)
	}

	plan.Total = round(total/opts.Divisor, opts.Precision)
	fmt.Fprintf(&b, "\nTotal Distance of all routes: %.*f %s\n", opts.Precision, plan.Total, opts.Unit)
	plan.Text = b.String()
	return plan
}

func round(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
