package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gametracker/internal/database"
	"gametracker/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, repo *UserRepository, username string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), username)
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return user
}

func mustGame(t *testing.T, repo *GameRepository, name string, creator int64) *models.Game {
	t.Helper()
	game := &models.Game{Name: name, Type: models.GameTypeTable, CreatedBy: creator}
	if err := repo.CreateGame(context.Background(), game); err != nil {
		t.Fatalf("CreateGame(%s) error = %v", name, err)
	}
	return game
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	if alice.ID == 0 {
		t.Fatal("CreateUser() did not set ID")
	}

	if _, err := repo.CreateUser(ctx, "alice"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrDuplicate", err)
	}

	got, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil || got == nil || got.ID != alice.ID {
		t.Fatalf("GetUserByUsername() = %+v, %v", got, err)
	}

	missing, err := repo.GetUserByID(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("GetUserByID(missing) = %+v, %v; want nil, nil", missing, err)
	}

	bob := mustUser(t, repo, "bob")
	byID, err := repo.GetUsersByIDs(ctx, []int64{alice.ID, bob.ID, 9999})
	if err != nil {
		t.Fatalf("GetUsersByIDs() error = %v", err)
	}
	if len(byID) != 2 || byID[bob.ID].Username != "bob" {
		t.Errorf("GetUsersByIDs() = %+v", byID)
	}

	renamed, err := repo.UpdateUsername(ctx, bob.ID, "robert")
	if err != nil || renamed == nil || renamed.Username != "robert" {
		t.Fatalf("UpdateUsername() = %+v, %v", renamed, err)
	}
	if _, err := repo.UpdateUsername(ctx, bob.ID, "alice"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("rename to taken username error = %v, want ErrDuplicate", err)
	}
	if u, err := repo.UpdateUsername(ctx, 9999, "ghost"); err != nil || u != nil {
		t.Errorf("UpdateUsername(missing) = %+v, %v", u, err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil || len(users) != 2 || users[0].Username != "alice" {
		t.Errorf("ListUsers() = %+v, %v", users, err)
	}

	deleted, err := repo.DeleteUser(ctx, bob.ID)
	if err != nil || !deleted {
		t.Errorf("DeleteUser() = %v, %v", deleted, err)
	}
	deleted, err = repo.DeleteUser(ctx, bob.ID)
	if err != nil || deleted {
		t.Errorf("second DeleteUser() = %v, %v", deleted, err)
	}
}

func TestDeleteUserStillReferenced(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	games := NewGameRepository(db)

	alice := mustUser(t, users, "alice")
	mustGame(t, games, "Chess", alice.ID)

	_, err := users.DeleteUser(context.Background(), alice.ID)
	if !errors.Is(err, ErrReferenced) {
		t.Errorf("DeleteUser() error = %v, want ErrReferenced", err)
	}
}

func TestSessions(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	now := time.Now().UTC()

	if _, err := repo.CreateSession(ctx, "live-hash", alice.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := repo.CreateSession(ctx, "old-hash", alice.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	s, err := repo.GetSessionByTokenHash(ctx, "live-hash")
	if err != nil || s == nil || s.UserID != alice.ID {
		t.Fatalf("GetSessionByTokenHash() = %+v, %v", s, err)
	}
	if s.IsExpired() {
		t.Error("live session reported expired")
	}

	old, err := repo.GetSessionByTokenHash(ctx, "old-hash")
	if err != nil || old == nil || !old.IsExpired() {
		t.Fatalf("expired session = %+v, %v", old, err)
	}

	n, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, %v; want 1", n, err)
	}
	if s, _ := repo.GetSessionByTokenHash(ctx, "old-hash"); s != nil {
		t.Error("expired session survived cleanup")
	}

	if err := repo.DeleteSessionByTokenHash(ctx, "live-hash"); err != nil {
		t.Fatalf("DeleteSessionByTokenHash() error = %v", err)
	}
	if err := repo.DeleteSessionByTokenHash(ctx, "live-hash"); err != nil {
		t.Errorf("deleting a missing session should succeed: %v", err)
	}
}

func TestGameRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewGameRepository(db)
	ctx := context.Background()

	alice := mustUser(t, users, "alice")
	bob := mustUser(t, users, "bob")

	chess := mustGame(t, repo, "Chess", alice.ID)
	halo := &models.Game{Name: "Halo Infinite", Type: models.GameTypeVideo, CreatedBy: bob.ID, ImageURL: "/uploads/halo.png"}
	if err := repo.CreateGame(ctx, halo); err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}

	got, err := repo.GetGameByID(ctx, halo.ID)
	if err != nil || got == nil || got.ImageURL != "/uploads/halo.png" || got.Type != models.GameTypeVideo {
		t.Fatalf("GetGameByID() = %+v, %v", got, err)
	}

	tests := []struct {
		name   string
		filter models.GameFilter
		want   int
	}{
		{"all", models.GameFilter{}, 2},
		{"by type", models.GameFilter{Type: models.GameTypeVideo}, 1},
		{"by creator", models.GameFilter{CreatedBy: alice.ID}, 1},
		{"query is case insensitive", models.GameFilter{Query: "HALO"}, 1},
		{"no match", models.GameFilter{Query: "monopoly"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games, err := repo.ListGames(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListGames() error = %v", err)
			}
			if len(games) != tt.want {
				t.Errorf("ListGames() returned %d games, want %d", len(games), tt.want)
			}
		})
	}

	chess.Name = "Speed Chess"
	chess.ImageURL = "https://cdn.example.com/chess.png"
	ok, err := repo.UpdateGame(ctx, chess)
	if err != nil || !ok {
		t.Fatalf("UpdateGame() = %v, %v", ok, err)
	}
	got, _ = repo.GetGameByID(ctx, chess.ID)
	if got.Name != "Speed Chess" || got.ImageURL != "https://cdn.example.com/chess.png" {
		t.Errorf("updated game = %+v", got)
	}

	ok, err = repo.DeleteGame(ctx, chess.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteGame() = %v, %v", ok, err)
	}
	if got, _ := repo.GetGameByID(ctx, chess.ID); got != nil {
		t.Error("game still present after delete")
	}
}

func TestResultRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	games := NewGameRepository(db)
	repo := NewResultRepository(db)
	ctx := context.Background()

	alice := mustUser(t, users, "alice")
	bob := mustUser(t, users, "bob")
	carol := mustUser(t, users, "carol")
	chess := mustGame(t, games, "Chess", alice.ID)
	uno := mustGame(t, games, "Uno", bob.ID)

	base := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)
	first := &models.GameResult{
		GameID:     chess.ID,
		PlayedAt:   base,
		Notes:      "opening night",
		RecordedBy: alice.ID,
		Players: []models.PlayerResult{
			{UserID: alice.ID, Score: 1, IsWinner: true},
			{UserID: bob.ID, Score: 0},
		},
	}
	if err := repo.CreateResult(ctx, first); err != nil {
		t.Fatalf("CreateResult() error = %v", err)
	}
	second := &models.GameResult{
		GameID:     uno.ID,
		PlayedAt:   base.Add(time.Hour),
		RecordedBy: bob.ID,
		Players: []models.PlayerResult{
			{UserID: bob.ID, Score: 120, IsWinner: true},
			{UserID: carol.ID, Score: 80},
			{UserID: alice.ID, Score: 45.5},
		},
	}
	if err := repo.CreateResult(ctx, second); err != nil {
		t.Fatalf("CreateResult() error = %v", err)
	}

	got, err := repo.GetResultByID(ctx, first.ID)
	if err != nil || got == nil {
		t.Fatalf("GetResultByID() = %+v, %v", got, err)
	}
	if got.GameName != "Chess" || got.Notes != "opening night" || len(got.Players) != 2 {
		t.Errorf("result = %+v", got)
	}
	if got.Players[0].Username != "alice" || !got.Players[0].IsWinner {
		t.Errorf("players = %+v", got.Players)
	}

	all, err := repo.ListResults(ctx, models.ResultFilter{})
	if err != nil || len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("ListResults() newest first = %+v, %v", all, err)
	}
	byGame, _ := repo.ListResults(ctx, models.ResultFilter{GameID: chess.ID})
	if len(byGame) != 1 {
		t.Errorf("ListResults(game) = %d results", len(byGame))
	}
	byUser, _ := repo.ListResults(ctx, models.ResultFilter{UserID: carol.ID})
	if len(byUser) != 1 || byUser[0].ID != second.ID {
		t.Errorf("ListResults(user) = %+v", byUser)
	}
	limited, _ := repo.ListResults(ctx, models.ResultFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("ListResults(limit 1) = %d results", len(limited))
	}

	parts, err := repo.ListParticipations(ctx, models.ResultFilter{})
	if err != nil || len(parts) != 5 {
		t.Fatalf("ListParticipations() = %d rows, %v", len(parts), err)
	}
	chessParts, _ := repo.ListParticipations(ctx, models.ResultFilter{GameID: chess.ID})
	if len(chessParts) != 2 {
		t.Errorf("ListParticipations(game) = %d rows", len(chessParts))
	}
	aliceParts, _ := repo.ListParticipations(ctx, models.ResultFilter{UserID: alice.ID})
	if len(aliceParts) != 2 || aliceParts[0].ResultID != second.ID {
		t.Errorf("ListParticipations(user) = %+v", aliceParts)
	}

	// swap the chess result's winner
	first.Players = []models.PlayerResult{
		{UserID: alice.ID, Score: 0},
		{UserID: bob.ID, Score: 1, IsWinner: true},
	}
	first.Notes = ""
	ok, err := repo.UpdateResult(ctx, first, true)
	if err != nil || !ok {
		t.Fatalf("UpdateResult() = %v, %v", ok, err)
	}
	got, _ = repo.GetResultByID(ctx, first.ID)
	if got.Notes != "" || len(got.Winners()) != 1 || got.Winners()[0].UserID != bob.ID {
		t.Errorf("updated result = %+v", got)
	}

	ok, err = repo.UpdateResult(ctx, &models.GameResult{ID: 9999, PlayedAt: base}, false)
	if err != nil || ok {
		t.Errorf("UpdateResult(missing) = %v, %v", ok, err)
	}

	// deleting the game cascades to its results
	if _, err := games.DeleteGame(ctx, chess.ID); err != nil {
		t.Fatalf("DeleteGame() error = %v", err)
	}
	if got, _ := repo.GetResultByID(ctx, first.ID); got != nil {
		t.Error("result survived game deletion")
	}

	ok, err = repo.DeleteResult(ctx, second.ID)
	if err != nil || !ok {
		t.Errorf("DeleteResult() = %v, %v", ok, err)
	}
	parts, _ = repo.ListParticipations(ctx, models.ResultFilter{})
	if len(parts) != 0 {
		t.Errorf("participations left after deletes = %d", len(parts))
	}
}

func TestCreateResultRollsBackOnUnknownPlayer(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	games := NewGameRepository(db)
	repo := NewResultRepository(db)
	ctx := context.Background()

	alice := mustUser(t, users, "alice")
	chess := mustGame(t, games, "Chess", alice.ID)

	err := repo.CreateResult(ctx, &models.GameResult{
		GameID:     chess.ID,
		PlayedAt:   time.Now().UTC(),
		RecordedBy: alice.ID,
		Players: []models.PlayerResult{
			{UserID: alice.ID, Score: 1, IsWinner: true},
			{UserID: 4242, Score: 0},
		},
	})
	if !errors.Is(err, ErrReferenced) {
		t.Fatalf("CreateResult() error = %v, want ErrReferenced", err)
	}

	results, _ := repo.ListResults(ctx, models.ResultFilter{})
	if len(results) != 0 {
		t.Errorf("partial result left behind: %+v", results)
	}
}

func TestPlaySessionRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	games := NewGameRepository(db)
	results := NewResultRepository(db)
	repo := NewPlaySessionRepository(db)
	ctx := context.Background()

	alice := mustUser(t, users, "alice")
	bob := mustUser(t, users, "bob")
	chess := mustGame(t, games, "Chess", alice.ID)

	s := &models.PlaySession{
		GameID:      chess.ID,
		StartedBy:   alice.ID,
		Player1ID:   alice.ID,
		Player2ID:   bob.ID,
		TotalRounds: 2,
		Status:      models.PlaySessionSetup,
	}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	s.Status = models.PlaySessionInProgress
	s.CurrentRound = 1
	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	sessionID := s.ID
	round := &models.GameResult{
		GameID:        chess.ID,
		PlaySessionID: &sessionID,
		PlayedAt:      time.Now().UTC(),
		RecordedBy:    alice.ID,
		Players: []models.PlayerResult{
			{UserID: alice.ID, Score: 3, IsWinner: true},
			{UserID: bob.ID, Score: 1},
		},
	}
	completed := time.Now().UTC()
	s.CurrentRound = 2
	s.Status = models.PlaySessionCompleted
	s.CompletedAt = &completed
	if err := repo.RecordRound(ctx, s, round); err != nil {
		t.Fatalf("RecordRound() error = %v", err)
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}
	if got.Status != models.PlaySessionCompleted || got.CurrentRound != 2 || got.CompletedAt == nil {
		t.Errorf("session = %+v", got)
	}

	rounds, err := results.ListResultsBySession(ctx, s.ID)
	if err != nil || len(rounds) != 1 || rounds[0].PlaySessionID == nil || *rounds[0].PlaySessionID != s.ID {
		t.Errorf("ListResultsBySession() = %+v, %v", rounds, err)
	}

	list, err := repo.ListByGame(ctx, chess.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListByGame() = %+v, %v", list, err)
	}

	if missing, err := repo.GetByID(ctx, 9999); err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %+v, %v", missing, err)
	}
}
