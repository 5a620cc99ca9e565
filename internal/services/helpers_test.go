package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/gamification"
	"github.com/habitforge/habitforge-web/internal/models"
	"github.com/stretchr/testify/require"
)

// testDB opens a fresh named in-memory database. Each test gets its own name so
// shared-cache connections never bleed state between tests.
func testDB(t *testing.T) *database.DB {
	t.Helper()

	url := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewDB(url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestUser(t *testing.T, db *database.DB, name string) *models.User {
	t.Helper()

	users := NewUserService(db)
	user, err := users.CreateUser(&models.RegisterRequest{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "correct-horse",
	})
	require.NoError(t, err)

	return user
}

func createTestHabit(t *testing.T, db *database.DB, userID int, difficulty string) *models.Habit {
	t.Helper()

	habits := NewHabitService(db)
	habit, err := habits.CreateHabit(userID, &models.CreateHabitRequest{
		Title:      "Morning run",
		Category:   "health",
		Frequency:  models.FrequencyDaily,
		Difficulty: difficulty,
	})
	require.NoError(t, err)

	return habit
}

// insertCompletion backdates a completion fact directly, bypassing the engine
func insertCompletion(t *testing.T, db *database.DB, habitID int, at time.Time) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO habit_completions (habit_id, note, xp_earned, completed_at) VALUES (?, '', 0, ?)`,
		habitID, at)
	require.NoError(t, err)
}

func setUserCounters(t *testing.T, db *database.DB, userID, xp, xpWeek, streak, maxStreak int) {
	t.Helper()

	_, err := db.Exec(
		`UPDATE users SET xp = ?, xp_week = ?, level = ?, streak = ?, max_streak = ? WHERE id = ?`,
		xp, xpWeek, gamification.LevelForXP(xp), streak, maxStreak, userID)
	require.NoError(t, err)
}

func getUser(t *testing.T, db *database.DB, userID int) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.Get(&user, `SELECT * FROM users WHERE id = ?`, userID))
	return &user
}

// nopEmitter satisfies Emitter for tests that do not care about notifications.
type nopEmitter struct{}

func (nopEmitter) SendToUser(int, string, interface{}) {}

// recordingEmitter captures every event for assertion.
type recordingEmitter struct {
	events []string
}

func (e *recordingEmitter) SendToUser(_ int, event string, _ interface{}) {
	e.events = append(e.events, event)
}
