package services

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/gamification"
	"github.com/habitforge/habitforge-web/internal/logger"
	"github.com/habitforge/habitforge-web/internal/models"
)

// Emitter pushes an event to every connected session of one user. Implemented by
// the websocket hub; a no-op implementation is fine for tests.
type Emitter interface {
	SendToUser(userID int, event string, data interface{})
}

// RewardService orchestrates everything a habit completion triggers: the completion
// fact, XP and coins, the streak transition, level-ups, achievements and the
// realtime notifications.
type RewardService struct {
	db           *database.DB
	achievements *AchievementService
	emitter      Emitter
	log          *logger.Log

	// now is injectable so tests can pin the clock
	now func() time.Time

	mu    sync.Mutex
	users map[int]*sync.Mutex
}

func NewRewardService(db *database.DB, achievements *AchievementService, emitter Emitter) *RewardService {
	return &RewardService{
		db:           db,
		achievements: achievements,
		emitter:      emitter,
		log:          logger.New(),
		now:          time.Now,
		users:        make(map[int]*sync.Mutex),
	}
}

// userLock returns the mutex serializing all completions of one user. Two users
// never contend with each other.
func (s *RewardService) userLock(userID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.users[userID] = lock
	}
	return lock
}

// CompleteHabit records one habit completion and applies every reward it earns.
// The rejection checks run before any write, so ErrHabitNotFound and
// ErrAlreadyCompletedToday guarantee nothing changed.
func (s *RewardService) CompleteHabit(habitID, userID int, note string) (*models.RewardResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()

	// Ownership and liveness in one query: a foreign, missing or archived habit is
	// the same answer to the caller
	var habit models.Habit
	err := s.db.Get(&habit,
		`SELECT * FROM habits WHERE id = ? AND user_id = ? AND is_active = TRUE`, habitID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load habit: %w", err)
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var completedToday int
	if err := s.db.Get(&completedToday,
		`SELECT COUNT(*) FROM habit_completions WHERE habit_id = ? AND completed_at >= ? AND completed_at < ?`,
		habitID, todayStart, todayStart.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("failed to check today's completions: %w", err)
	}
	if completedToday > 0 {
		return nil, ErrAlreadyCompletedToday
	}

	var user models.User
	if err := s.db.Get(&user, `SELECT * FROM users WHERE id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// The streak spans all habits, so the transition looks at the most recent
	// completion anywhere, not just this habit's
	var lastCompletion *time.Time
	var last time.Time
	err = s.db.Get(&last, `
		SELECT hc.completed_at FROM habit_completions hc
		JOIN habits h ON h.id = hc.habit_id
		WHERE h.user_id = ?
		ORDER BY hc.completed_at DESC LIMIT 1
	`, userID)
	if err == nil {
		lastCompletion = &last
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load last completion: %w", err)
	}

	streak := gamification.AdvanceStreak(lastCompletion, now, user.Streak, user.MaxStreak)

	// The streak bonus is paid at the streak length this completion produced
	xp := models.XPBreakdown{
		Base:        habit.XPReward,
		StreakBonus: gamification.StreakXPBonus(streak.Streak),
	}
	xp.Total = xp.Base + xp.StreakBonus

	levelUp := gamification.CheckLevelUp(user.XP, user.XP+xp.Total)

	// Level-bundle coins are part of the primary transaction. The bundle's bonus XP
	// is only reported in the payload; the stored total stays single-pass, so one
	// completion never triggers a cascading second level evaluation.
	coinsGained := xp.Total / 10
	if levelUp.LeveledUp {
		coinsGained += levelUp.Rewards.Coins
	}

	newXP := user.XP + xp.Total
	newXPWeek := user.XPWeek + xp.Total
	newCoins := user.Coins + coinsGained
	newLevel := levelUp.NewLevel

	completion := models.HabitCompletion{
		HabitID:     habitID,
		Note:        note,
		XPEarned:    xp.Total,
		CompletedAt: now,
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO habit_completions (habit_id, note, xp_earned, completed_at) VALUES (?, ?, ?, ?)`,
		completion.HabitID, completion.Note, completion.XPEarned, completion.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		completion.ID = int(id)
	}

	if _, err := tx.Exec(`
		UPDATE users
		SET xp = ?, xp_week = ?, coins = ?, level = ?, streak = ?, max_streak = ?, updated_at = ?
		WHERE id = ?
	`, newXP, newXPWeek, newCoins, newLevel, streak.Streak, streak.MaxStreak, now, userID); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	s.log.Debug(fmt.Sprintf("user %d completed habit %d (+%d xp, streak %d)",
		userID, habitID, xp.Total, streak.Streak))

	// Post-commit: the completion stands even if achievement evaluation fails
	outcome := s.achievements.Evaluate(userID, now)

	reward := &models.RewardResult{
		Completion:   completion,
		Habit:        habit,
		XP:           xp,
		CoinsGained:  coinsGained,
		NewXP:        newXP,
		NewXPWeek:    newXPWeek,
		NewCoins:     newCoins,
		Streak:       streak,
		Milestone:    gamification.MilestoneForStreak(streak.Streak),
		Level:        levelUp,
		Progress:     gamification.ProgressInLevel(newXP, newLevel),
		Achievements: outcome,
	}

	s.emit(userID, reward)

	return reward, nil
}

// emit fires the realtime notifications for one reward. Delivery is best-effort;
// the consolidated payload is already on its way back over HTTP.
func (s *RewardService) emit(userID int, reward *models.RewardResult) {
	if s.emitter == nil {
		return
	}

	s.emitter.SendToUser(userID, "habit_completed", reward)

	if reward.Level.LeveledUp {
		s.emitter.SendToUser(userID, "level_up", reward.Level)
	}
	if len(reward.Achievements.Unlocked) > 0 {
		s.emitter.SendToUser(userID, "achievements_unlocked", reward.Achievements.Unlocked)
	}
	if reward.Milestone != nil {
		s.emitter.SendToUser(userID, "streak_milestone", map[string]interface{}{
			"streak":    reward.Streak.Streak,
			"milestone": reward.Milestone,
		})
	}
}
