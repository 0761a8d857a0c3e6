package voting

import "math"

// Tally computes each variant's share of all votes cast in the poll, keeping
// the input order. Percentages are rounded half away from zero (12.5 -> 13)
// and are 0 for every variant when nobody has voted.
func Tally(variants []VariantCount) []VariantResult {
	results := make([]VariantResult, 0, len(variants))

	var total int64
	for _, v := range variants {
		total += v.Votes
	}

	for _, v := range variants {
		percent := 0
		if total > 0 {
			percent = int(math.Round(float64(v.Votes) * 100 / float64(total)))
		}
		results = append(results, VariantResult{
			ID:         v.ID,
			Text:       v.Text,
			Percent:    percent,
			VotesCount: v.Votes,
			UserVoted:  v.UserVoted,
		})
	}
	return results
}
