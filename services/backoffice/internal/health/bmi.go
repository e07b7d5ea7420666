package health

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	minHeightCm = 50
	maxHeightCm = 250
	minWeightKg = 10
	maxWeightKg = 400
)

var ErrImplausibleMeasurement = errors.New("measurement out of plausible range")

// Measurement is one height/weight record of a student.
type Measurement struct {
	Date     time.Time `json:"date"`
	HeightCm float64   `json:"heightCm"`
	WeightKg float64   `json:"weightKg"`
}

// Point is one value of a BMI series.
type Point struct {
	Date         string  `json:"date"`
	BMI          float64 `json:"bmi"`
	Category     string  `json:"category"`
	Interpolated bool    `json:"interpolated"`
}

// BMI returns weight / height² rounded to one decimal.
func BMI(heightCm, weightKg float64) (float64, error) {
	if heightCm < minHeightCm || heightCm > maxHeightCm {
		return 0, fmt.Errorf("height %.1f cm: %w", heightCm, ErrImplausibleMeasurement)
	}
	if weightKg < minWeightKg || weightKg > maxWeightKg {
		return 0, fmt.Errorf("weight %.1f kg: %w", weightKg, ErrImplausibleMeasurement)
	}
	m := heightCm / 100
	return round1(weightKg / (m * m)), nil
}

// Category buckets a BMI value using the adult WHO cut-offs.
func Category(bmi float64) string {
	switch {
	case bmi <= 0:
		return ""
	case bmi < 18.5:
		return "Thiếu cân"
	case bmi < 25:
		return "Bình thường"
	case bmi < 30:
		return "Thừa cân"
	default:
		return "Béo phì"
	}
}

// Series sorts measurements by date and emits a point for each valid
// measurement plus linearly interpolated points every stepDays between two
// consecutive measurements. Nothing is emitted before the first or after the
// last measurement. stepDays <= 0 disables interpolation.
func Series(measurements []Measurement, stepDays int) []Point {
	type sample struct {
		date time.Time
		bmi  float64
	}

	samples := make([]sample, 0, len(measurements))
	for _, m := range measurements {
		bmi, err := BMI(m.HeightCm, m.WeightKg)
		if err != nil || m.Date.IsZero() {
			continue
		}
		samples = append(samples, sample{date: day(m.Date), bmi: bmi})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].date.Before(samples[j].date) })

	// Several records on one day collapse to the latest.
	deduped := samples[:0]
	for _, s := range samples {
		if n := len(deduped); n > 0 && deduped[n-1].date.Equal(s.date) {
			deduped[n-1] = s
			continue
		}
		deduped = append(deduped, s)
	}
	samples = deduped

	var points []Point
	for i, s := range samples {
		points = append(points, newPoint(s.date, s.bmi, false))
		if i == len(samples)-1 || stepDays <= 0 {
			continue
		}

		next := samples[i+1]
		span := next.date.Sub(s.date).Hours() / 24
		for d := stepDays; float64(d) < span; d += stepDays {
			frac := float64(d) / span
			bmi := s.bmi + (next.bmi-s.bmi)*frac
			points = append(points, newPoint(s.date.AddDate(0, 0, d), round1(bmi), true))
		}
	}
	return points
}

func newPoint(date time.Time, bmi float64, interpolated bool) Point {
	return Point{
		Date:         date.Format("2006-01-02"),
		BMI:          bmi,
		Category:     Category(bmi),
		Interpolated: interpolated,
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
