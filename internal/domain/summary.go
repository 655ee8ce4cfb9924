package domain

// Share is a bucket count and its percentage of the total.
type Share struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TypeBreakdown holds the share of each known issue type.
// Percentages need not sum to 100 when unknown types are present.
type TypeBreakdown struct {
	Problem  Share `json:"problem"`
	Question Share `json:"question"`
	Task     Share `json:"task"`
}

// TypePercentages is the response body of the type-percentage endpoint.
type TypePercentages struct {
	Problem   float64 `json:"problem"`
	Questions float64 `json:"questions"`
	Tasks     float64 `json:"tasks"`
}

// Percentages flattens the breakdown into the endpoint shape.
func (b TypeBreakdown) Percentages() TypePercentages {
	return TypePercentages{
		Problem:   b.Problem.Percentage,
		Questions: b.Question.Percentage,
		Tasks:     b.Task.Percentage,
	}
}

// Summary bundles the four statistics computed over a dataset.
type Summary struct {
	Total                              int              `json:"total"`
	TypePercentages                    TypeBreakdown    `json:"type_percentages"`
	PriorityPercentages                map[string]Share `json:"priority_percentages"`
	AverageResolutionHours             float64          `json:"average_resolution_hours"`
	LongestResolutionSatisfactionScore *float64         `json:"longest_resolution_satisfaction_score"`
}
