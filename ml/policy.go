package ml

// DelayThreshold is the probability above which a sprint is flagged.
const DelayThreshold = 0.5

const (
	RecommendationReduceBacklog = "reduce backlog or redistribute work"
	RecommendationOnTrack       = "team is progressing normally"
)

// Recommend maps a delay probability to the action suggested to the team.
func Recommend(probability float64) string {
	if probability > DelayThreshold {
		return RecommendationReduceBacklog
	}
	return RecommendationOnTrack
}
