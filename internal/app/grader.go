package app

import (
	"strings"

	"quizhub/internal/domain"
)

// AnswerKey extracts the ordered correct-answer texts from a question list.
func AnswerKey(questions []domain.Question) []string {
	key := make([]string, len(questions))
	for i, q := range questions {
		key[i] = q.CorrectAnswer
	}
	return key
}

// Grade counts submitted answers matching the answer key position by
// position. Comparison is case-sensitive text equality after trimming
// surrounding whitespace; a missing or extra answer is a non-match, never an
// error.
func Grade(key []string, answers []string) int {
	correct := 0
	for i, want := range key {
		if i >= len(answers) {
			break
		}
		if strings.TrimSpace(want) == strings.TrimSpace(answers[i]) {
			correct++
		}
	}
	return correct
}
