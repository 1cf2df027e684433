package handlers

import "testing"

func TestProcessPercentage(t *testing.T) {
	cases := []struct {
		name     string
		qty      int
		quantity int
		want     int
	}{
		{"no production", 0, 10, 0},
		{"partial", 4, 10, 40},
		{"rounds to nearest", 1, 3, 33},
		{"complete", 10, 10, 100},
		{"over-logged caps at 100", 13, 10, 100},
		{"zero declared quantity", 5, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := processPercentage(tc.qty, tc.quantity); got != tc.want {
				t.Errorf("processPercentage(%d, %d) = %d, want %d", tc.qty, tc.quantity, got, tc.want)
			}
		})
	}
}
