package usecase

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/servicedesk-stats/internal/domain"
)

// percentage returns count as a percentage of total, or 0 when total is 0.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// TypePercentages counts the known issue types. Unknown types are dropped from
// the counts but still contribute to the total.
func TypePercentages(issues []domain.Issue) domain.TypeBreakdown {
	var problems, questions, tasks int
	for _, issue := range issues {
		switch issue.Type {
		case domain.TypeProblem:
			problems++
		case domain.TypeQuestion:
			questions++
		case domain.TypeTask:
			tasks++
		}
	}
	total := len(issues)
	return domain.TypeBreakdown{
		Problem:  domain.Share{Count: problems, Percentage: percentage(problems, total)},
		Question: domain.Share{Count: questions, Percentage: percentage(questions, total)},
		Task:     domain.Share{Count: tasks, Percentage: percentage(tasks, total)},
	}
}

// PriorityPercentages buckets every distinct priority value it sees,
// so no record is ever lost.
func PriorityPercentages(issues []domain.Issue) map[string]domain.Share {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Priority]++
	}
	shares := make(map[string]domain.Share, len(counts))
	for priority, count := range counts {
		shares[priority] = domain.Share{Count: count, Percentage: percentage(count, len(issues))}
	}
	return shares
}

// FixedPriorityPercentages only knows high, normal and low. Other priorities
// are dropped from the counts but not from the total.
func FixedPriorityPercentages(issues []domain.Issue) map[string]domain.Share {
	counts := map[string]int{
		domain.PriorityHigh:   0,
		domain.PriorityNormal: 0,
		domain.PriorityLow:    0,
	}
	for _, issue := range issues {
		if _, ok := counts[issue.Priority]; ok {
			counts[issue.Priority]++
		}
	}
	shares := make(map[string]domain.Share, len(counts))
	for priority, count := range counts {
		shares[priority] = domain.Share{Count: count, Percentage: percentage(count, len(issues))}
	}
	return shares
}

// AverageResolutionTime returns the mean resolution time of high priority
// issues in hours, rounded to two decimals. Issues whose update precedes their
// creation are skipped. Returns 0 when nothing is left to average.
func AverageResolutionTime(issues []domain.Issue) float64 {
	var hours stats.Float64Data
	for _, issue := range issues {
		if issue.Priority != domain.PriorityHigh {
			continue
		}
		d := issue.ResolutionTime()
		if d < 0 {
			continue
		}
		hours = append(hours, d.Hours())
	}
	if len(hours) == 0 {
		return 0
	}
	mean, err := hours.Mean()
	if err != nil {
		return 0
	}
	rounded, err := stats.Round(mean, 2)
	if err != nil {
		return 0
	}
	return rounded
}

// InvertedIssues returns the issues whose update precedes their creation.
func InvertedIssues(issues []domain.Issue) []domain.Issue {
	var inverted []domain.Issue
	for _, issue := range issues {
		if issue.ResolutionTime() < 0 {
			inverted = append(inverted, issue)
		}
	}
	return inverted
}

// LongestResolutionSatisfactionScore returns the satisfaction score of the
// issue with the longest absolute resolution time. The first issue wins ties
// and a zero duration never qualifies. Nil means no issue qualified or the
// winner carries no score.
func LongestResolutionSatisfactionScore(issues []domain.Issue) *float64 {
	var longest time.Duration
	var winner *domain.Issue
	for i := range issues {
		d := issues[i].ResolutionTime().Abs()
		if d > longest {
			longest = d
			winner = &issues[i]
		}
	}
	if winner == nil {
		return nil
	}
	score, ok := winner.Score()
	if !ok {
		return nil
	}
	return &score
}

// Summarize computes all four statistics over the issues.
func Summarize(issues []domain.Issue) domain.Summary {
	return domain.Summary{
		Total:                              len(issues),
		TypePercentages:                    TypePercentages(issues),
		PriorityPercentages:                PriorityPercentages(issues),
		AverageResolutionHours:             AverageResolutionTime(issues),
		LongestResolutionSatisfactionScore: LongestResolutionSatisfactionScore(issues),
	}
}
