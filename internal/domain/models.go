package domain

import "time"

// User is an account with a denormalized lifetime score. CorrectAnswers is
// monotonically non-decreasing and mirrors the sum of Result scores
// referencing the user; the ledger keeps the two in step.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	CorrectAnswers int       `json:"correctAnswers"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Question is embedded in its quiz and has no independent lifecycle.
// CorrectAnswer is always text, whatever the option values represent, so
// grading can compare uniformly.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Result records one submission outcome. Immutable once appended.
type Result struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// Quiz is a titled question set owned by its creator, with an append-only
// submission history.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	Audio       string     `json:"audio,omitempty"`
	CreatorID   string     `json:"creatorId"`
	Questions   []Question `json:"questions"`
	Results     []Result   `json:"results"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LeaderboardEntry is derived from the user set on demand, never stored.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
}
