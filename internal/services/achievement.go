package services

import (
	"fmt"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/gamification"
	"github.com/habitforge/habitforge-web/internal/logger"
	"github.com/habitforge/habitforge-web/internal/models"
)

type AchievementService struct {
	db  *database.DB
	log *logger.Log
}

func NewAchievementService(db *database.DB) *AchievementService {
	return &AchievementService{db: db, log: logger.New()}
}

// GetAllAchievements returns every definition with the user's unlock state
func (s *AchievementService) GetAllAchievements(userID int) ([]models.AchievementView, error) {
	query := `
		SELECT a.*,
			ua.id IS NOT NULL AS unlocked,
			ua.unlocked_at AS unlocked_at
		FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = ?
		ORDER BY a.requirement ASC
	`

	achievements := []models.AchievementView{}
	if err := s.db.Select(&achievements, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}

	return achievements, nil
}

// GetUserAchievements returns the user's unlocks, newest first
func (s *AchievementService) GetUserAchievements(userID int) ([]models.UnlockedAchievement, error) {
	query := `
		SELECT a.*, ua.unlocked_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = ?
		ORDER BY ua.unlocked_at DESC
	`

	achievements := []models.UnlockedAchievement{}
	if err := s.db.Select(&achievements, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user achievements: %w", err)
	}

	return achievements, nil
}

// userCounters are the aggregates the evaluator compares against requirements.
type userCounters struct {
	Habits      int
	Streak      int
	Level       int
	Completions int
}

func (s *AchievementService) loadCounters(userID int) (*userCounters, error) {
	counters := &userCounters{}

	if err := s.db.Get(counters, `SELECT streak, level FROM users WHERE id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to load user counters: %w", err)
	}
	if err := s.db.Get(&counters.Habits, `SELECT COUNT(*) FROM habits WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}
	if err := s.db.Get(&counters.Completions,
		`SELECT COUNT(*) FROM habit_completions hc JOIN habits h ON h.id = hc.habit_id WHERE h.user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}

	return counters, nil
}

// Evaluate unlocks every not-yet-unlocked achievement whose requirement the user's
// aggregates now meet, crediting each unlock's XP as a flat increment. Best-effort:
// any failure reports a skipped outcome instead of an error, so a completion is
// never held hostage by achievement bookkeeping.
func (s *AchievementService) Evaluate(userID int, now time.Time) models.AchievementOutcome {
	skipped := models.AchievementOutcome{Skipped: true, Unlocked: []models.Achievement{}}

	counters, err := s.loadCounters(userID)
	if err != nil {
		s.log.WithError(err).Warn(fmt.Sprintf("achievement evaluation skipped for user %d", userID))
		return skipped
	}

	// Exclusion before evaluation: already-unlocked pairs never re-enter the loop,
	// so no duplicate unlock can be created.
	locked := []models.Achievement{}
	query := `
		SELECT * FROM achievements
		WHERE id NOT IN (SELECT achievement_id FROM user_achievements WHERE user_id = ?)
		ORDER BY requirement ASC
	`
	if err := s.db.Select(&locked, query, userID); err != nil {
		s.log.WithError(err).Warn(fmt.Sprintf("achievement evaluation skipped for user %d", userID))
		return skipped
	}

	unlocked := []models.Achievement{}
	for _, achievement := range locked {
		shouldUnlock := false

		switch achievement.Category {
		case models.AchievementCategoryHabits:
			shouldUnlock = counters.Habits >= achievement.Requirement
		case models.AchievementCategoryStreak:
			shouldUnlock = counters.Streak >= achievement.Requirement
		case models.AchievementCategoryLevel:
			shouldUnlock = counters.Level >= achievement.Requirement
		case models.AchievementCategoryCompletions:
			shouldUnlock = counters.Completions >= achievement.Requirement
		default:
			// Special achievements are static data without automatic detection.
		}

		if !shouldUnlock {
			continue
		}

		if err := s.unlock(userID, achievement, now); err != nil {
			s.log.WithError(err).Warn(fmt.Sprintf("failed to unlock achievement %q for user %d", achievement.Title, userID))
			return models.AchievementOutcome{Skipped: true, Unlocked: unlocked}
		}

		unlocked = append(unlocked, achievement)
	}

	return models.AchievementOutcome{Unlocked: unlocked}
}

// unlock records the (user, achievement) fact and credits its XP reward. The credit
// is a direct additive grant: it updates both XP counters and the cached level
// projection, but deliberately does not run the level-up reward pipeline.
func (s *AchievementService) unlock(userID int, achievement models.Achievement, now time.Time) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)`,
		userID, achievement.ID, now); err != nil {
		return err
	}

	if _, err := tx.Exec(
		`UPDATE users SET xp = xp + ?, xp_week = xp_week + ?, updated_at = ? WHERE id = ?`,
		achievement.XPReward, achievement.XPReward, now, userID); err != nil {
		return err
	}

	// Keep the cached level consistent with the new XP total
	var xp int
	if err := tx.Get(&xp, `SELECT xp FROM users WHERE id = ?`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET level = ? WHERE id = ?`, gamification.LevelForXP(xp), userID); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateAchievement adds a new definition (admin use)
func (s *AchievementService) CreateAchievement(a *models.Achievement) (*models.Achievement, error) {
	if a.Icon == "" {
		a.Icon = "🏆"
	}
	if a.XPReward == 0 {
		a.XPReward = 50
	}
	a.CreatedAt = time.Now()

	query := `
		INSERT INTO achievements (title, description, icon, category, requirement, xp_reward, created_at)
		VALUES (:title, :description, :icon, :category, :requirement, :xp_reward, :created_at)
	`
	result, err := s.db.NamedExec(query, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement ID: %w", err)
	}

	a.ID = int(id)
	return a, nil
}

// SeedDefaultAchievements inserts the built-in achievement table. Existing titles
// are left untouched, so reseeding on every startup is safe.
func (s *AchievementService) SeedDefaultAchievements() error {
	achievements := []models.Achievement{
		// Habit-count achievements
		{Title: "First Step", Description: "Create your first habit", Icon: "🎯", Category: models.AchievementCategoryHabits, Requirement: 1, XPReward: 50},
		{Title: "Habit Collector", Description: "Create 5 different habits", Icon: "📚", Category: models.AchievementCategoryHabits, Requirement: 5, XPReward: 100},
		{Title: "Habit Master", Description: "Create 10 habits", Icon: "🏆", Category: models.AchievementCategoryHabits, Requirement: 10, XPReward: 200},
		{Title: "Full Arsenal", Description: "Create 20 habits", Icon: "⚔️", Category: models.AchievementCategoryHabits, Requirement: 20, XPReward: 500},

		// Streak achievements
		{Title: "Consistency", Description: "Reach a 3-day streak", Icon: "🔥", Category: models.AchievementCategoryStreak, Requirement: 3, XPReward: 75},
		{Title: "Perfect Week", Description: "Reach a 7-day streak", Icon: "⭐", Category: models.AchievementCategoryStreak, Requirement: 7, XPReward: 150},
		{Title: "Two Weeks Strong", Description: "Reach a 14-day streak", Icon: "💪", Category: models.AchievementCategoryStreak, Requirement: 14, XPReward: 300},
		{Title: "Unstoppable", Description: "Reach a 30-day streak", Icon: "💎", Category: models.AchievementCategoryStreak, Requirement: 30, XPReward: 500},
		{Title: "Living Legend", Description: "Reach a 60-day streak", Icon: "👑", Category: models.AchievementCategoryStreak, Requirement: 60, XPReward: 1000},
		{Title: "Immortal", Description: "Reach a 100-day streak", Icon: "🎖️", Category: models.AchievementCategoryStreak, Requirement: 100, XPReward: 2000},

		// Level achievements
		{Title: "Novice", Description: "Reach level 5", Icon: "🌱", Category: models.AchievementCategoryLevel, Requirement: 5, XPReward: 100},
		{Title: "Intermediate", Description: "Reach level 10", Icon: "🌿", Category: models.AchievementCategoryLevel, Requirement: 10, XPReward: 200},
		{Title: "Advanced", Description: "Reach level 15", Icon: "🌳", Category: models.AchievementCategoryLevel, Requirement: 15, XPReward: 300},
		{Title: "Experienced", Description: "Reach level 25", Icon: "🦅", Category: models.AchievementCategoryLevel, Requirement: 25, XPReward: 500},
		{Title: "Legendary", Description: "Reach level 50", Icon: "👑", Category: models.AchievementCategoryLevel, Requirement: 50, XPReward: 1000},
		{Title: "Ascended", Description: "Reach level 75", Icon: "✨", Category: models.AchievementCategoryLevel, Requirement: 75, XPReward: 2000},
		{Title: "Divine", Description: "Reach level 100", Icon: "🌟", Category: models.AchievementCategoryLevel, Requirement: 100, XPReward: 5000},

		// Completion-count achievements
		{Title: "First Victory", Description: "Complete your first habit", Icon: "✅", Category: models.AchievementCategoryCompletions, Requirement: 1, XPReward: 25},
		{Title: "Productive", Description: "Complete 10 habits", Icon: "💪", Category: models.AchievementCategoryCompletions, Requirement: 10, XPReward: 100},
		{Title: "Dedicated", Description: "Complete 25 habits", Icon: "⚡", Category: models.AchievementCategoryCompletions, Requirement: 25, XPReward: 200},
		{Title: "Tireless", Description: "Complete 50 habits", Icon: "🚀", Category: models.AchievementCategoryCompletions, Requirement: 50, XPReward: 300},
		{Title: "Centurion", Description: "Complete 100 habits", Icon: "🏅", Category: models.AchievementCategoryCompletions, Requirement: 100, XPReward: 500},
		{Title: "Machine", Description: "Complete 250 habits", Icon: "🤖", Category: models.AchievementCategoryCompletions, Requirement: 250, XPReward: 1000},
		{Title: "Legend of Legends", Description: "Complete 500 habits", Icon: "🏆", Category: models.AchievementCategoryCompletions, Requirement: 500, XPReward: 2500},
		{Title: "Supreme Conqueror", Description: "Complete 1000 habits", Icon: "💫", Category: models.AchievementCategoryCompletions, Requirement: 1000, XPReward: 5000},

		// Special achievements: static data only, unlocked by bespoke logic that the
		// automatic evaluator does not attempt
		{Title: "Early Bird", Description: "Complete a habit before 6am", Icon: "🌅", Category: models.AchievementCategorySpecial, Requirement: 1, XPReward: 100},
		{Title: "Night Owl", Description: "Complete a habit after 11pm", Icon: "🦉", Category: models.AchievementCategorySpecial, Requirement: 1, XPReward: 100},
		{Title: "Multitasker", Description: "Complete 5 different habits in one day", Icon: "🎭", Category: models.AchievementCategorySpecial, Requirement: 5, XPReward: 200},
		{Title: "Weekend Warrior", Description: "Complete habits on 4 consecutive weekends", Icon: "⚔️", Category: models.AchievementCategorySpecial, Requirement: 4, XPReward: 250},
		{Title: "Perfectionist", Description: "Complete every active habit for 7 straight days", Icon: "💯", Category: models.AchievementCategorySpecial, Requirement: 7, XPReward: 500},
	}

	for _, achievement := range achievements {
		query := `
			INSERT OR IGNORE INTO achievements (title, description, icon, category, requirement, xp_reward, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.Exec(query, achievement.Title, achievement.Description, achievement.Icon,
			achievement.Category, achievement.Requirement, achievement.XPReward, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", achievement.Title, err)
		}
	}

	return nil
}
