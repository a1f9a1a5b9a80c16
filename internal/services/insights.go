package services

import "github.com/AnshRaj112/decision-journal-backend/internal/models"

const (
	// StressThresholdPct is the anxious share above which a stress pattern is flagged.
	StressThresholdPct = 30
	// MinInsightSample is the smallest collection insights are computed for.
	MinInsightSample = 3
)

// BiasInsights is the heuristic summary computed over a decision snapshot.
type BiasInsights struct {
	DominantEmotion        models.Emotion `json:"dominantEmotion"`
	DominantEmotionPercent int            `json:"dominantEmotionPercent"`
	ReviewRate             int            `json:"reviewRate"`
	AnxiousRatio           int            `json:"anxiousRatio"`
	StressPattern          bool           `json:"stressPattern"`
	TotalDecisions         int            `json:"totalDecisions"`
	ReviewedDecisions      int            `json:"reviewedDecisions"`
}

// ComputeBiasInsights aggregates snapshot. The boolean is false when the
// snapshot holds fewer than MinInsightSample decisions (insufficient data).
//
// Ties for the dominant emotion go to the emotion with the smallest ordinal
// in models.Emotions.
func ComputeBiasInsights(snapshot []models.Decision) (BiasInsights, bool) {
	n := len(snapshot)
	if n < MinInsightSample {
		return BiasInsights{}, false
	}

	counts := make(map[models.Emotion]int, len(models.Emotions))
	reviewed := 0
	for _, d := range snapshot {
		counts[d.Emotion]++
		if d.IsReviewed() {
			reviewed++
		}
	}

	var dominant models.Emotion
	best := 0
	for _, e := range models.Emotions {
		if counts[e] > best {
			dominant, best = e, counts[e]
		}
	}

	anxious := percent(counts[models.EmotionAnxious], n)
	return BiasInsights{
		DominantEmotion:        dominant,
		DominantEmotionPercent: percent(best, n),
		ReviewRate:             percent(reviewed, n),
		AnxiousRatio:           anxious,
		StressPattern:          anxious > StressThresholdPct,
		TotalDecisions:         n,
		ReviewedDecisions:      reviewed,
	}, true
}

// percent returns count/total*100 rounded half up, using integers only.
func percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return (count*200 + total) / (2 * total)
}
