// Package viz produces canned sample data for the dashboard's chart and 3D
// views. Generators are stateless pure functions: the same prompt always
// yields the same series, seeded from a hash of the prompt text.
package viz

import (
	"hash/fnv"
	"math"
	"math/rand"
)

const (
	chartPoints   = 12
	scatterPoints = 200
)

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ChartData struct {
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
}

type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type ScatterData struct {
	Title  string         `json:"title"`
	Points []ScatterPoint `json:"points"`
}

var chartLabels = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

func seedFor(prompt string) int64 {
	h := fnv.New64a()
	h.Write([]byte(prompt))
	return int64(h.Sum64())
}

// Chart returns a 12-point sample series derived from the prompt.
func Chart(prompt string) *ChartData {
	rng := rand.New(rand.NewSource(seedFor(prompt)))

	points := make([]ChartPoint, chartPoints)
	value := 40 + rng.Float64()*20
	for i := range points {
		// Random walk keeps the series plausible rather than pure noise
		value += rng.Float64()*16 - 8
		if value < 0 {
			value = 0
		}
		points[i] = ChartPoint{
			Label: chartLabels[i],
			Value: math.Round(value*100) / 100,
		}
	}

	return &ChartData{
		Title:  "Sample series for: " + prompt,
		Points: points,
	}
}

// Scatter returns a 200-point 3D cloud derived from the prompt: a noisy
// spiral, which reads better in the viewer than a uniform cube.
func Scatter(prompt string) *ScatterData {
	rng := rand.New(rand.NewSource(seedFor(prompt)))

	points := make([]ScatterPoint, scatterPoints)
	for i := range points {
		t := float64(i) / scatterPoints * 4 * math.Pi
		radius := 0.2 + t/(4*math.Pi)*0.8
		points[i] = ScatterPoint{
			X: math.Round((radius*math.Cos(t)+rng.Float64()*0.1-0.05)*1000) / 1000,
			Y: math.Round((radius*math.Sin(t)+rng.Float64()*0.1-0.05)*1000) / 1000,
			Z: math.Round((t/(4*math.Pi)*2-1+rng.Float64()*0.1-0.05)*1000) / 1000,
		}
	}

	return &ScatterData{
		Title:  "Sample point cloud for: " + prompt,
		Points: points,
	}
}
