package app_test

import (
	"reflect"
	"testing"

	"quizhub/internal/app"
	"quizhub/internal/domain"
)

func TestRankCompetitionRanking(t *testing.T) {
	users := []domain.User{
		{Username: "alice", CorrectAnswers: 10},
		{Username: "bob", CorrectAnswers: 10},
		{Username: "carol", CorrectAnswers: 8},
	}

	got := app.Rank(users)
	want := []domain.LeaderboardEntry{
		{Rank: 1, Username: "alice"},
		{Rank: 1, Username: "bob"},
		{Rank: 3, Username: "carol"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRankEmptyAndSingle(t *testing.T) {
	if got := app.Rank(nil); len(got) != 0 {
		t.Fatalf("expected empty leaderboard, got %v", got)
	}

	got := app.Rank([]domain.User{{Username: "solo", CorrectAnswers: 0}})
	if len(got) != 1 || got[0].Rank != 1 || got[0].Username != "solo" {
		t.Fatalf("expected single rank-1 entry, got %v", got)
	}
}

func TestRankSortsDescending(t *testing.T) {
	users := []domain.User{
		{Username: "low", CorrectAnswers: 1},
		{Username: "high", CorrectAnswers: 9},
		{Username: "mid", CorrectAnswers: 5},
	}

	got := app.Rank(users)
	want := []domain.LeaderboardEntry{
		{Rank: 1, Username: "high"},
		{Rank: 2, Username: "mid"},
		{Rank: 3, Username: "low"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	users := []domain.User{
		{Username: "first", CorrectAnswers: 3},
		{Username: "second", CorrectAnswers: 3},
		{Username: "third", CorrectAnswers: 3},
	}

	got := app.Rank(users)
	for i, name := range []string{"first", "second", "third"} {
		if got[i].Username != name || got[i].Rank != 1 {
			t.Fatalf("expected stable tie order with shared rank 1, got %v", got)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	users := []domain.User{
		{Username: "low", CorrectAnswers: 1},
		{Username: "high", CorrectAnswers: 9},
	}
	_ = app.Rank(users)
	if users[0].Username != "low" {
		t.Fatalf("input slice was reordered")
	}
}
