package engine

import "testing"

func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"linear", []float64{1, 2, 3, 4}, 1.0},
		{"declining", []float64{100, 90, 80, 70}, -10},
		{"flat", []float64{5, 5, 5}, 0},
		{"single", []float64{42}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slope(tt.values); got != tt.want {
				t.Errorf("Slope(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
