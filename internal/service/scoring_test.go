package service

import (
	"context"
	"testing"
)

func TestRandomScorer_Range(t *testing.T) {
	var s RandomScorer
	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		score := s.Score(context.Background(), "ref")
		if score < 50 || score >= 100 {
			t.Fatalf("得分超出 [50,100) 范围: %d", score)
		}
		seen[score] = true
	}
	if len(seen) < 40 {
		t.Errorf("得分分布过于集中，仅出现 %d 个取值", len(seen))
	}
}

func TestFeedbackPhrase_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{99, FeedbackExcellent},
		{81, FeedbackExcellent},
		{80, FeedbackGood},
		{51, FeedbackGood},
		{50, FeedbackPractice},
	}
	for _, tt := range tests {
		if got := FeedbackPhrase(tt.score); got != tt.want {
			t.Errorf("FeedbackPhrase(%d) = %q，期望 %q", tt.score, got, tt.want)
		}
	}
}
