package analysis

// Dimension is one rubric axis of the evaluation.
type Dimension struct {
	Score    int    `json:"score"`
	Quote    string `json:"quote"`
	Feedback string `json:"feedback"`
}

// Result is the structured evaluation produced for a session transcript.
type Result struct {
	ConflictResolution Dimension `json:"conflict_resolution"`
	Professionalism    Dimension `json:"professionalism"`
	Articulation       Dimension `json:"articulation"`
	Learning           Dimension `json:"learning"`
	Summary            string    `json:"summary"`
}

// Fallback preserves a model reply that could not be parsed as a Result.
type Fallback struct {
	RawResponse string `json:"raw_response"`
}

const (
	minScore = 1
	maxScore = 5
)

// clampScores forces every dimension score into the rubric's 1..5 range.
// Structural parse failures take the fallback path instead; a model that
// returns an out-of-range number is still a usable result.
func (r *Result) clampScores() {
	for _, dim := range []*Dimension{
		&r.ConflictResolution,
		&r.Professionalism,
		&r.Articulation,
		&r.Learning,
	} {
		if dim.Score < minScore {
			dim.Score = minScore
		}
		if dim.Score > maxScore {
			dim.Score = maxScore
		}
	}
}
