package services

import "testing"

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{meters: 0, want: "0 m"},
		{meters: 42, want: "42 m"},
		{meters: 999, want: "999 m"},
		{meters: 999.5, want: "999 m"},
		{meters: 999.99, want: "999 m"},
		{meters: 42.7, want: "42 m"},
		{meters: 1000, want: "1.00 km"},
		{meters: 1500, want: "1.50 km"},
		{meters: 12346, want: "12.35 km"},
	}

	for _, tt := range tests {
		if got := FormatDistance(tt.meters); got != tt.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.meters, got, tt.want)
		}
	}
}
