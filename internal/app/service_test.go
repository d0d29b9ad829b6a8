package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub/internal/app"
	"quizhub/internal/domain"
	"quizhub/internal/infra/memory"
)

func TestRecordSubmissionUpdatesLedger(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	correct, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []string{"Paris", "4", "wrong"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if correct != 2 {
		t.Fatalf("expected 2 correct, got %d", correct)
	}

	user, err := store.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.CorrectAnswers != 2 {
		t.Fatalf("expected counter 2, got %d", user.CorrectAnswers)
	}

	quiz, err := store.FindQuizByID(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("find quiz: %v", err)
	}
	if len(quiz.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(quiz.Results))
	}
	if quiz.Results[0].UserID != "u1" || quiz.Results[0].Score != 2 {
		t.Fatalf("unexpected result %+v", quiz.Results[0])
	}
}

func TestRepeatedSubmissionsAccumulate(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	if _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []string{"Paris", "4", "blue"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []string{"Paris", "no", "no"}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	user, _ := store.FindUserByID(ctx, "u1")
	if user.CorrectAnswers != 4 {
		t.Fatalf("expected accumulated counter 4, got %d", user.CorrectAnswers)
	}

	quiz, _ := store.FindQuizByID(ctx, "quiz-1")
	if len(quiz.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(quiz.Results))
	}
}

func TestSubmitUnknownQuizFailsWithoutMutation(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	_, err := service.SubmitQuiz(ctx, "quiz-missing", "u1", []string{"Paris"})
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	user, _ := store.FindUserByID(ctx, "u1")
	if user.CorrectAnswers != 0 {
		t.Fatalf("counter mutated on failed submission: %d", user.CorrectAnswers)
	}
}

func TestSubmitUnknownUserStillRecordsResult(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	correct, err := service.SubmitQuizAnonymous(ctx, "quiz-1", "ghost", []string{"Paris", "4", "blue"})
	if err != nil {
		t.Fatalf("anonymous submit: %v", err)
	}
	if correct != 3 {
		t.Fatalf("expected 3 correct, got %d", correct)
	}

	quiz, _ := store.FindQuizByID(ctx, "quiz-1")
	if len(quiz.Results) != 1 || quiz.Results[0].UserID != "ghost" {
		t.Fatalf("expected ghost result recorded, got %+v", quiz.Results)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)

	cases := []app.CreateQuizRequest{
		{Title: "", Questions: []domain.Question{{Prompt: "q", Options: []string{"a"}, CorrectAnswer: "a"}}},
		{Title: "no questions"},
		{Title: "no options", Questions: []domain.Question{{Prompt: "q", CorrectAnswer: "a"}}},
		{Title: "no answer", Questions: []domain.Question{{Prompt: "q", Options: []string{"a"}}}},
	}
	for _, req := range cases {
		if _, err := service.CreateQuiz(ctx, "u1", req); !errors.Is(err, domain.ErrInvalidQuiz) {
			t.Fatalf("expected ErrInvalidQuiz for %+v, got %v", req, err)
		}
	}

	quiz, err := service.CreateQuiz(ctx, "u1", app.CreateQuizRequest{
		Title:     "valid",
		Questions: []domain.Question{{Prompt: "q", Options: []string{"a", "b"}, CorrectAnswer: "a"}},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if quiz.ID == "" || quiz.CreatorID != "u1" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

func TestGetLeaderboardRanksStoredUsers(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	if err := store.CreateUser(ctx, domain.User{ID: "u2", Username: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []string{"Paris", "4", "blue"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	entries, err := service.GetLeaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "alice" || entries[0].Rank != 1 {
		t.Fatalf("expected alice first, got %+v", entries[0])
	}
	if entries[1].Username != "bob" || entries[1].Rank != 2 {
		t.Fatalf("expected bob second, got %+v", entries[1])
	}
}

func TestDeleteQuizInvalidatesAnswerKey(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)

	// Warm the cache so the delete has something to invalidate.
	if _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []string{"Paris"}); err != nil {
		t.Fatalf("warm-up submit: %v", err)
	}

	if err := service.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := service.SubmitQuiz(ctx, "quiz-1", "u1", []string{"Paris"}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound after delete, got %v", err)
	}
}

func newTestService(t *testing.T) (*memory.Store, *app.QuizService) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	if err := store.CreateUser(ctx, domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.InsertQuiz(ctx, domain.Quiz{
		ID:        "quiz-1",
		Title:     "Capitals",
		CreatorID: "u1",
		Questions: []domain.Question{
			{Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
			{Prompt: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			{Prompt: "Sky color?", Options: []string{"blue", "green"}, CorrectAnswer: "blue"},
		},
	}); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	answerKeys := memory.NewAnswerKeyCache(store, 5*time.Minute)
	broadcaster := app.NewBroadcaster(store, 0)
	return store, app.NewQuizService(store, answerKeys, broadcaster)
}
