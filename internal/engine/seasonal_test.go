package engine

import "testing"

func TestSeasonalFactor_Table(t *testing.T) {
	want := map[int]float64{
		1: 1.05, 2: 0.95, 3: 1.00, 4: 1.00, 5: 1.00, 6: 1.05,
		7: 1.10, 8: 1.10, 9: 1.00, 10: 1.00, 11: 1.05, 12: 1.20,
	}
	for m := 1; m <= 12; m++ {
		got := SeasonalFactor(m)
		if got != want[m] {
			t.Errorf("SeasonalFactor(%d) = %v, want %v", m, got, want[m])
		}
		if got < 0.9 || got > 1.2 {
			t.Errorf("SeasonalFactor(%d) = %v, outside [0.9, 1.2]", m, got)
		}
	}
}

func TestSeasonalFactor_OutOfRange(t *testing.T) {
	for _, m := range []int{-1, 0, 13, 100} {
		if got := SeasonalFactor(m); got != 1.00 {
			t.Errorf("SeasonalFactor(%d) = %v, want 1.00", m, got)
		}
	}
}
