package internal

import (
	"testing"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42.5}, 42.5},
		{"several", []float64{10, 20, 60}, 30},
		{"reordered", []float64{60, 10, 20}, 30},
		{"negative", []float64{-10, 30}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Average(tt.values); got != tt.want {
				t.Errorf("Average(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestComputeAverages(t *testing.T) {
	totals := newGroupedTotals(map[string]float64{
		"2024-01-15-2024-01-21": 30,
		"2024-01-08-2024-01-14": 10,
		"2024-01-01-2024-01-07": 50,
	})

	tests := []struct {
		name         string
		selected     []string
		wantSelected float64
		wantCount    int
	}{
		{"nothing selected", nil, 0, 0},
		{"two selected", []string{"2024-01-15-2024-01-21", "2024-01-08-2024-01-14"}, 20, 2},
		{"duplicates count once", []string{"2024-01-08-2024-01-14", "2024-01-08-2024-01-14"}, 10, 1},
		{"unknown keys ignored", []string{"2024-01-01-2024-01-31", "2024-01-01-2024-01-07"}, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAverages(totals, tt.selected)
			if got.Total != 30 {
				t.Errorf("Total = %v, want 30", got.Total)
			}
			if got.Selected != tt.wantSelected || got.SelectedCount != tt.wantCount {
				t.Errorf("Selected = %v (%d), want %v (%d)", got.Selected, got.SelectedCount, tt.wantSelected, tt.wantCount)
			}
		})
	}
}

func TestTotalAverage_Empty(t *testing.T) {
	if got := TotalAverage(GroupedTotals{}); got != 0 {
		t.Errorf("expected 0 for no buckets, got %v", got)
	}
}
