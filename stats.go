package main

import (
	"sort"
	"sync"
	"time"

	"snake-arena/game/types"
)

// GroupSize is the number of records folded into one record at the next compression level
const GroupSize = 100

// RoundStats keeps every finished round in memory. Old rounds are folded into
// summary records so long training sessions stay bounded.
type RoundStats struct {
	Rounds []RoundRecord
	mutex  sync.RWMutex
}

// RoundRecord is either a single round (CompressionIndex 0) or a summary of many
type RoundRecord struct {
	Seq              int     `json:"seq"`
	CompressionIndex int     `json:"compressionIndex"`
	RoundsCount      int     `json:"roundsCount"`
	AverageScore     float64 `json:"averageScore"`
	MedianScore      float64 `json:"medianScore"`
	MaxScore         int     `json:"maxScore"`
	MinScore         int     `json:"minScore"`
	AverageTicks     float64 `json:"averageTicks"`
	MaxTicks         int     `json:"maxTicks"`
}

func NewRoundStats() *RoundStats {
	return &RoundStats{
		Rounds: make([]RoundRecord, 0),
	}
}

// AddRound records a finished round
func (s *RoundStats) AddRound(score, ticks int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Rounds = append(s.Rounds, RoundRecord{
		Seq:          s.played(),
		RoundsCount:  1,
		AverageScore: float64(score),
		MedianScore:  float64(score),
		MaxScore:     score,
		MinScore:     score,
		AverageTicks: float64(ticks),
		MaxTicks:     ticks,
	})
	s.groupRounds()
}

// groupRounds folds every full group of records at one level into a record at the next level
func (s *RoundStats) groupRounds() {
	sort.SliceStable(s.Rounds, func(i, j int) bool {
		if s.Rounds[i].CompressionIndex != s.Rounds[j].CompressionIndex {
			return s.Rounds[i].CompressionIndex > s.Rounds[j].CompressionIndex
		}
		return s.Rounds[i].Seq < s.Rounds[j].Seq
	})

	for level := 0; ; level++ {
		var records, others []RoundRecord
		for _, r := range s.Rounds {
			if r.CompressionIndex == level {
				records = append(records, r)
			} else {
				others = append(others, r)
			}
		}
		if len(records) < GroupSize {
			break
		}

		var grouped []RoundRecord
		for i := 0; i < len(records); i += GroupSize {
			end := i + GroupSize
			if end > len(records) {
				grouped = append(grouped, records[i:]...)
				break
			}
			grouped = append(grouped, summarize(records[i:end], level+1))
		}
		s.Rounds = append(others, grouped...)
	}
}

func summarize(group []RoundRecord, level int) RoundRecord {
	out := RoundRecord{
		Seq:              group[0].Seq,
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
		MaxTicks:         group[0].MaxTicks,
	}

	var totalScore, totalTicks float64
	var medians []float64
	for _, r := range group {
		if r.MaxScore > out.MaxScore {
			out.MaxScore = r.MaxScore
		}
		if r.MinScore < out.MinScore {
			out.MinScore = r.MinScore
		}
		if r.MaxTicks > out.MaxTicks {
			out.MaxTicks = r.MaxTicks
		}
		totalScore += r.AverageScore * float64(r.RoundsCount)
		totalTicks += r.AverageTicks * float64(r.RoundsCount)
		out.RoundsCount += r.RoundsCount
		for i := 0; i < r.RoundsCount; i++ {
			medians = append(medians, r.MedianScore)
		}
	}

	out.AverageScore = totalScore / float64(out.RoundsCount)
	out.AverageTicks = totalTicks / float64(out.RoundsCount)
	out.MedianScore = median(medians)
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	if len(values)%2 == 0 {
		return (values[len(values)/2-1] + values[len(values)/2]) / 2
	}
	return values[len(values)/2]
}

func (s *RoundStats) played() int {
	total := 0
	for _, r := range s.Rounds {
		total += r.RoundsCount
	}
	return total
}

// RoundsPlayed returns the number of finished rounds
func (s *RoundStats) RoundsPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.played()
}

// AverageScore returns the mean score over every round
func (s *RoundStats) AverageScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var total float64
	var rounds int
	for _, r := range s.Rounds {
		total += r.AverageScore * float64(r.RoundsCount)
		rounds += r.RoundsCount
	}
	if rounds == 0 {
		return 0
	}
	return total / float64(rounds)
}

// MedianScore approximates the median using each record's median weighted by its round count
func (s *RoundStats) MedianScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var values []float64
	for _, r := range s.Rounds {
		for i := 0; i < r.RoundsCount; i++ {
			values = append(values, r.MedianScore)
		}
	}
	return median(values)
}

// MaxScore returns the best score of the session
func (s *RoundStats) MaxScore() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	best := 0
	for _, r := range s.Rounds {
		if r.MaxScore > best {
			best = r.MaxScore
		}
	}
	return best
}

// AverageDuration is the mean round length in simulated time
func (s *RoundStats) AverageDuration() time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var total float64
	var rounds int
	for _, r := range s.Rounds {
		total += r.AverageTicks * float64(r.RoundsCount)
		rounds += r.RoundsCount
	}
	if rounds == 0 {
		return 0
	}
	return time.Duration(total / float64(rounds) * float64(types.MoveInterval))
}
