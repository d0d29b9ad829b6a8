package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizhub/internal/domain"
)

// QuizService contains the quiz-hosting use cases: authoring, the score
// ledger, and leaderboard reads.
type QuizService struct {
	store       Store
	answerKeys  AnswerKeyRepository
	broadcaster *Broadcaster
}

func NewQuizService(store Store, answerKeys AnswerKeyRepository, broadcaster *Broadcaster) *QuizService {
	return &QuizService{store: store, answerKeys: answerKeys, broadcaster: broadcaster}
}

// CreateQuizRequest carries the authoring payload.
type CreateQuizRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Audio       string            `json:"audio"`
	Questions   []domain.Question `json:"questions"`
}

// CreateQuiz validates and persists a new quiz owned by creatorID.
func (s *QuizService) CreateQuiz(ctx context.Context, creatorID string, req CreateQuizRequest) (domain.Quiz, error) {
	if strings.TrimSpace(req.Title) == "" || len(req.Questions) == 0 {
		return domain.Quiz{}, domain.ErrInvalidQuiz
	}
	for _, q := range req.Questions {
		if len(q.Options) == 0 || strings.TrimSpace(q.CorrectAnswer) == "" {
			return domain.Quiz{}, domain.ErrInvalidQuiz
		}
	}

	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Audio:       req.Audio,
		CreatorID:   creatorID,
		Questions:   req.Questions,
		Results:     []domain.Result{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return quiz, nil
}

// GetQuiz returns a quiz by ID.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.FindQuizByID(ctx, quizID)
}

// ListQuizzesByCreator returns the quizzes owned by a user.
func (s *QuizService) ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	return s.store.ListQuizzesByCreator(ctx, creatorID)
}

// DeleteQuiz removes a quiz by ID.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.answerKeys.Invalidate(quizID)
	return nil
}

// SubmitQuiz records an authenticated submission; userID comes from the
// verified token.
func (s *QuizService) SubmitQuiz(ctx context.Context, quizID, userID string, answers []string) (int, error) {
	return s.recordSubmission(ctx, quizID, userID, answers)
}

// SubmitQuizAnonymous records a submission with a caller-supplied userID.
// Ledger semantics are identical to the authenticated path.
func (s *QuizService) SubmitQuizAnonymous(ctx context.Context, quizID, userID string, answers []string) (int, error) {
	return s.recordSubmission(ctx, quizID, userID, answers)
}

// recordSubmission grades the answers, appends a result to the quiz and adds
// the correct count to the user's lifetime counter. The two writes are
// independent single-record updates; a missing user downgrades the counter
// increment to a logged no-op while the result append stands. Repeated
// submissions accumulate. The leaderboard broadcast is fire-and-forget.
func (s *QuizService) recordSubmission(ctx context.Context, quizID, userID string, answers []string) (int, error) {
	key, err := s.answerKeys.GetAnswerKey(ctx, quizID)
	if err != nil {
		return 0, err
	}

	correct := Grade(key, answers)

	if err := s.store.AppendResult(ctx, quizID, domain.Result{UserID: userID, Score: correct}); err != nil {
		return 0, fmt.Errorf("append result: %w", err)
	}
	if err := s.store.IncrementUserScore(ctx, userID, correct); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return 0, fmt.Errorf("increment score: %w", err)
		}
		log.Printf("submission for unknown user %s: result recorded, counter skipped", userID)
	}

	s.broadcaster.Trigger()
	return correct, nil
}

// GetLeaderboard computes the current ranking from stored users.
func (s *QuizService) GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	users, err := s.store.ListUsersByScoreDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return Rank(users), nil
}
