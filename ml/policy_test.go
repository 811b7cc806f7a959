package ml

import "testing"

func TestRecommend(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, RecommendationOnTrack},
		{0.25, RecommendationOnTrack},
		{0.5, RecommendationOnTrack},
		{0.5000001, RecommendationReduceBacklog},
		{0.9, RecommendationReduceBacklog},
		{1, RecommendationReduceBacklog},
	}
	for _, tt := range tests {
		if got := Recommend(tt.p); got != tt.want {
			t.Errorf("Recommend(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}
