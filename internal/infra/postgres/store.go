package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub/internal/app"
	"quizhub/internal/domain"
)

// Store implements app.Store on Postgres. Questions and results live as JSONB
// columns on the quizzes row, so result appends and counter increments are
// each a single-row update; the ledger's two writes stay untransacted.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username=$1 OR email=$2)`,
		user.Username, user.Email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate user: %w", err)
	}
	if exists {
		return domain.ErrDuplicateUser
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, correct_answers, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CorrectAnswers, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.findUser(ctx, `SELECT id, username, email, password_hash, correct_answers, created_at
		FROM users WHERE id=$1`, id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findUser(ctx, `SELECT id, username, email, password_hash, correct_answers, created_at
		FROM users WHERE email=$1`, email)
}

func (s *Store) findUser(ctx context.Context, query, arg string) (domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CorrectAnswers, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Store) IncrementUserScore(ctx context.Context, id string, delta int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET correct_answers = correct_answers + $2 WHERE id=$1`, id, delta)
	if err != nil {
		return fmt.Errorf("increment score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) ListUsersByScoreDesc(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, email, password_hash, correct_answers, created_at
		 FROM users ORDER BY correct_answers DESC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.CorrectAnswers, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) InsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	results, err := json.Marshal(quiz.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, title, description, image, audio, creator_id, questions, results, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		quiz.ID, quiz.Title, quiz.Description, quiz.Image, quiz.Audio, quiz.CreatorID,
		questions, results, quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Store) FindQuizByID(ctx context.Context, id string) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, description, image, audio, creator_id, questions, results, created_at
		 FROM quizzes WHERE id=$1`, id)
	quiz, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, err
}

func (s *Store) ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, image, audio, creator_id, questions, results, created_at
		 FROM quizzes WHERE creator_id=$1 ORDER BY created_at DESC`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// AppendResult appends one result record to the quiz's JSONB history in a
// single statement, keeping the append atomic at row granularity.
func (s *Store) AppendResult(ctx context.Context, quizID string, result domain.Result) error {
	payload, err := json.Marshal([]domain.Result{result})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET results = results || $2::jsonb WHERE id=$1`, quizID, payload)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// LoadAnswerKey satisfies the answer-key cache loader contract without
// pulling the result history off disk.
func (s *Store) LoadAnswerKey(ctx context.Context, quizID string) ([]string, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT questions FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return app.AnswerKey(questions), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row rowScanner) (domain.Quiz, error) {
	var quiz domain.Quiz
	var questions, results []byte
	err := row.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Image, &quiz.Audio,
		&quiz.CreatorID, &questions, &results, &quiz.CreatedAt)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(results, &quiz.Results); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal results: %w", err)
	}
	return quiz, nil
}
