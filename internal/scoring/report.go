package scoring

import (
	"context"
	"math"

	"github.com/abhisek/focusflow/internal/focus"
)

// Trend describes the direction of quality scores over time.
type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

const (
	minTrendScores = 5
	trendSlope     = 0.1

	lowCompletion     = 0.7
	highInterruptions = 2.0
	lowConsistency    = 0.6
	highConsistencySD = 0.3
)

// Distribution counts scores per quality category.
type Distribution struct {
	High          int     `json:"high"`
	Medium        int     `json:"medium"`
	Low           int     `json:"low"`
	HighPercent   float64 `json:"high_percent"`
	MediumPercent float64 `json:"medium_percent"`
	LowPercent    float64 `json:"low_percent"`
}

// FactorAnalysis summarizes raw factor inputs across sessions.
type FactorAnalysis struct {
	AvgCompletion      float64 `json:"avg_completion"`
	AvgInterruptions   float64 `json:"avg_interruptions"`
	AvgConsistency     float64 `json:"avg_consistency"`
	ConsistencyStdDev  float64 `json:"consistency_std_dev"`
	ConsistencySamples int     `json:"consistency_samples"`
	SessionsConsidered int     `json:"sessions_considered"`
}

// QualityReport is the quality overview of a user's recent sessions.
type QualityReport struct {
	SessionsAnalyzed int            `json:"sessions_analyzed"`
	AverageScore     float64        `json:"average_score"`
	Trend            Trend          `json:"trend"`
	Distribution     Distribution   `json:"distribution"`
	Factors          FactorAnalysis `json:"factors"`
	Recommendations  []string       `json:"recommendations"`
}

// Report scores the window like ScoreUserSessions and summarizes the result.
// An empty window yields a zero report.
func (s *Scorer) Report(ctx context.Context, userID string, days int) (*QualityReport, error) {
	results, err := s.scoreWindow(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &QualityReport{Trend: TrendInsufficientData}, nil
	}

	scores := make([]float64, len(results))
	sessions := make([]*focus.Session, len(results))
	for i, r := range results {
		scores[i] = r.result.Score
		sessions[i] = r.session
	}

	fa := AnalyzeFactors(sessions)
	return &QualityReport{
		SessionsAnalyzed: len(results),
		AverageScore:     round2(meanOf(scores)),
		Trend:            ScoreTrend(scores),
		Distribution:     Distribute(scores),
		Factors:          fa,
		Recommendations:  fa.Recommendations(),
	}, nil
}

// ScoreTrend classifies chronological scores by their least-squares slope.
func ScoreTrend(scores []float64) Trend {
	n := len(scores)
	if n < minTrendScores {
		return TrendInsufficientData
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumX2 - sumX*sumX)
	switch {
	case slope > trendSlope:
		return TrendImproving
	case slope < -trendSlope:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Distribute buckets scores by category.
func Distribute(scores []float64) Distribution {
	var d Distribution
	for _, sc := range scores {
		switch focus.CategorizeScore(sc) {
		case focus.QualityHigh:
			d.High++
		case focus.QualityMedium:
			d.Medium++
		case focus.QualityLow:
			d.Low++
		default:
		}
	}
	if n := len(scores); n > 0 {
		d.HighPercent = round1(100 * float64(d.High) / float64(n))
		d.MediumPercent = round1(100 * float64(d.Medium) / float64(n))
		d.LowPercent = round1(100 * float64(d.Low) / float64(n))
	}
	return d
}

// AnalyzeFactors averages the raw factor inputs. Duration consistency only
// counts sessions with an actual duration.
func AnalyzeFactors(sessions []*focus.Session) FactorAnalysis {
	fa := FactorAnalysis{SessionsConsidered: len(sessions)}
	if len(sessions) == 0 {
		return fa
	}
	var completion, interruptions float64
	var consistency []float64
	for _, s := range sessions {
		if s.IsSuccessful() {
			completion++
		}
		interruptions += float64(s.InterruptionCount)
		if s.ActualDuration != nil && s.PlannedDuration > 0 {
			r := float64(*s.ActualDuration) / float64(s.PlannedDuration)
			consistency = append(consistency, math.Max(0, 1-math.Abs(1-r)))
		}
	}
	n := float64(len(sessions))
	fa.AvgCompletion = completion / n
	fa.AvgInterruptions = interruptions / n
	fa.AvgConsistency = meanOf(consistency)
	fa.ConsistencySamples = len(consistency)
	fa.ConsistencyStdDev = sampleStdDev(consistency)
	return fa
}

// Recommendations returns the advice triggered by the analysis.
func (fa FactorAnalysis) Recommendations() []string {
	var out []string
	if fa.AvgCompletion < lowCompletion {
		out = append(out, "Focus on completing more sessions. Try shorter durations or better planning.")
	}
	if fa.AvgInterruptions > highInterruptions {
		out = append(out, "Work on reducing interruptions. Use Do Not Disturb mode and set boundaries.")
	}
	// Without any actual durations there is nothing to say about estimates.
	if fa.ConsistencySamples > 0 && fa.AvgConsistency < lowConsistency {
		out = append(out, "Improve time estimation. Track actual against planned durations and adjust.")
	}
	if fa.ConsistencyStdDev > highConsistencySD {
		out = append(out, "Work on consistency. Try to keep similar session patterns.")
	}
	return out
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func sampleStdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := meanOf(vs)
	var ss float64
	for _, v := range vs {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vs)-1))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
