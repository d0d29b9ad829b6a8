package app

import (
	"sort"

	"quizhub/internal/domain"
)

// Rank orders users by cumulative score descending and assigns competition
// ranks: equal scores share a rank and the next distinct score resumes at the
// positional index (10,10,8 -> 1,1,3). The sort is stable so ties keep their
// input order.
func Rank(users []domain.User) []domain.LeaderboardEntry {
	sorted := make([]domain.User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CorrectAnswers > sorted[j].CorrectAnswers
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	rank := 1
	for i, user := range sorted {
		if i > 0 && user.CorrectAnswers != sorted[i-1].CorrectAnswers {
			rank = i + 1
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:     rank,
			Username: user.Username,
		})
	}
	return entries
}
