package app

import (
	"context"

	"quizhub/internal/domain"
)

// Store abstracts the document store shared by all submission flows. Each
// mutation targets a single record, so implementations only guarantee
// per-record atomicity; the ledger's dual write is deliberately untransacted.
type Store interface {
	CreateUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, id string) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	// IncrementUserScore adds delta to the user's cumulative counter and
	// returns domain.ErrUserNotFound when the user does not exist.
	IncrementUserScore(ctx context.Context, id string, delta int) error
	ListUsersByScoreDesc(ctx context.Context) ([]domain.User, error)

	InsertQuiz(ctx context.Context, quiz domain.Quiz) error
	FindQuizByID(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	AppendResult(ctx context.Context, quizID string, result domain.Result) error
}

// AnswerKeyRepository serves the grading hot path (cache in front of Store).
type AnswerKeyRepository interface {
	GetAnswerKey(ctx context.Context, quizID string) ([]string, error)
	// Invalidate drops a cached key after its quiz is deleted.
	Invalidate(quizID string)
}
