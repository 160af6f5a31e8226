package main

import (
	"testing"
	"time"

	"snake-arena/game/types"
)

func TestRoundStatsEmpty(t *testing.T) {
	s := NewRoundStats()
	if s.RoundsPlayed() != 0 || s.AverageScore() != 0 || s.MedianScore() != 0 || s.MaxScore() != 0 {
		t.Error("Expected zero values for an empty session")
	}
	if s.AverageDuration() != 0 {
		t.Errorf("Expected zero duration, got %v", s.AverageDuration())
	}
}

func TestRoundStatsAggregates(t *testing.T) {
	s := NewRoundStats()
	s.AddRound(2, 10)
	s.AddRound(8, 30)
	s.AddRound(5, 20)

	if s.RoundsPlayed() != 3 {
		t.Errorf("Expected 3 rounds, got %d", s.RoundsPlayed())
	}
	if s.AverageScore() != 5 {
		t.Errorf("Expected average 5, got %v", s.AverageScore())
	}
	if s.MedianScore() != 5 {
		t.Errorf("Expected median 5, got %v", s.MedianScore())
	}
	if s.MaxScore() != 8 {
		t.Errorf("Expected max 8, got %d", s.MaxScore())
	}
	if want := 20 * types.MoveInterval; s.AverageDuration() != want {
		t.Errorf("Expected average duration %v, got %v", want, s.AverageDuration())
	}
}

func TestRoundStatsGroupsOldRounds(t *testing.T) {
	s := NewRoundStats()
	for i := 0; i < GroupSize+5; i++ {
		s.AddRound(i, 1)
	}

	if got := len(s.Rounds); got != 6 {
		t.Fatalf("Expected 1 summary plus 5 single records, got %d records", got)
	}
	summary := s.Rounds[0]
	if summary.CompressionIndex != 1 || summary.RoundsCount != GroupSize {
		t.Errorf("Expected a level-1 summary of %d rounds, got %+v", GroupSize, summary)
	}
	if summary.MinScore != 0 || summary.MaxScore != GroupSize-1 {
		t.Errorf("Unexpected summary bounds: %+v", summary)
	}

	if s.RoundsPlayed() != GroupSize+5 {
		t.Errorf("Expected %d rounds, got %d", GroupSize+5, s.RoundsPlayed())
	}
	if s.MaxScore() != GroupSize+4 {
		t.Errorf("Expected max %d, got %d", GroupSize+4, s.MaxScore())
	}
	n := float64(GroupSize + 5)
	if want := (n - 1) / 2; s.AverageScore() != want {
		t.Errorf("Expected average %v, got %v", want, s.AverageScore())
	}
	if s.AverageDuration() != time.Duration(types.MoveInterval) {
		t.Errorf("Expected one move interval, got %v", s.AverageDuration())
	}
}
