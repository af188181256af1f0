package model

import (
	"math"
	"testing"
)

// TestClassifyScore проверяет границы категорий.
func TestClassifyScore(t *testing.T) {
	tests := []struct {
		score float64
		want  ScoreCategory
	}{
		{1.0, CategorySuitable},
		{0.35, CategorySuitable},
		{0.3499, CategoryNeedsReview},
		{0.30, CategoryNeedsReview},
		{0.25, CategoryNeedsReview},
		{0.24999, CategoryUnsuitable},
		{0, CategoryUnsuitable},
		{-0.1, CategoryUnsuitable},
		{math.NaN(), CategoryNeedsReview},
	}

	for _, tt := range tests {
		if got := ClassifyScore(tt.score); got != tt.want {
			t.Errorf("ClassifyScore(%v) = %q, ожидалось %q", tt.score, got, tt.want)
		}
	}
}
