package main

import (
	"fmt"
	"os"
	"vrp-route-service/internal/vrp"

	"gopkg.in/yaml.v3"
)

// problemFile is the on-disk instance. JSON files parse as YAML too.
// Unreachable arcs are written as .inf or -1.
type problemFile struct {
	Labels       []string    `yaml:"labels"`
	Distances    [][]float64 `yaml:"distances"`
	Durations    [][]float64 `yaml:"durations"`
	Depot        int         `yaml:"depot"`
	Demands      []int64     `yaml:"demands"`
	VehicleCount int         `yaml:"vehicle_count"`
	Capacities   []int64     `yaml:"capacities"`
}

func loadProblem(path string) (*problemFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}
	var p problemFile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse problem %q: %w", path, err)
	}
	if len(p.Distances) == 0 {
		return nil, fmt.Errorf("problem %q: distances is required", path)
	}
	p.Distances = markUnreachable(p.Distances)
	p.Durations = markUnreachable(p.Durations)
	return &p, nil
}

func markUnreachable(m [][]float64) [][]float64 {
	for _, row := range m {
		for j, v := range row {
			if v == -1 {
				row[j] = vrp.NoEdge
			}
		}
	}
	return m
}
