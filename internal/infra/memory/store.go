package memory

import (
	"context"
	"sort"
	"sync"

	"quizhub/internal/app"
	"quizhub/internal/domain"
)

// Store is an in-memory implementation of app.Store, used by unit tests and
// when the server runs without a configured database.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	userOrder []string
	quizzes   map[string]*domain.Quiz
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		quizzes: make(map[string]*domain.Quiz),
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return domain.ErrDuplicateUser
		}
	}
	u := user
	s.users[user.ID] = &u
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *Store) FindUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return *user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) IncrementUserScore(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.CorrectAnswers += delta
	return nil
}

// ListUsersByScoreDesc returns users sorted by cumulative score descending;
// ties keep registration order.
func (s *Store) ListUsersByScoreDesc(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, *s.users[id])
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CorrectAnswers > users[j].CorrectAnswers
	})
	return users, nil
}

func (s *Store) InsertQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := quiz
	s.quizzes[quiz.ID] = &q
	return nil
}

func (s *Store) FindQuizByID(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return *quiz, nil
}

func (s *Store) ListQuizzesByCreator(_ context.Context, creatorID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.CreatorID == creatorID {
			quizzes = append(quizzes, *quiz)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

func (s *Store) AppendResult(_ context.Context, quizID string, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Results = append(quiz.Results, result)
	return nil
}

// LoadAnswerKey satisfies the answer-key cache loader contract.
func (s *Store) LoadAnswerKey(ctx context.Context, quizID string) ([]string, error) {
	quiz, err := s.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return app.AnswerKey(quiz.Questions), nil
}
