package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/logger"
)

// SweepService runs the scheduled maintenance passes: expiring streaks that were
// not kept alive, and resetting the weekly ranking window.
type SweepService struct {
	db  *database.DB
	log *logger.Log

	now func() time.Time
}

func NewSweepService(db *database.DB) *SweepService {
	return &SweepService{
		db:  db,
		log: logger.New(),
		now: time.Now,
	}
}

// RunStreakExpirySweep zeroes the streak of every user who did not complete
// anything yesterday or today. Each user is updated independently, so one failure
// does not block the rest; max_streak is never touched.
func (s *SweepService) RunStreakExpirySweep() (int, error) {
	now := s.now()
	yesterdayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)

	type candidate struct {
		ID int `db:"id"`
	}
	candidates := []candidate{}
	if err := s.db.Select(&candidates, `SELECT id FROM users WHERE streak > 0`); err != nil {
		return 0, fmt.Errorf("failed to list streak holders: %w", err)
	}

	expired := 0
	for _, c := range candidates {
		var last time.Time
		err := s.db.Get(&last, `
			SELECT hc.completed_at FROM habit_completions hc
			JOIN habits h ON h.id = hc.habit_id
			WHERE h.user_id = ?
			ORDER BY hc.completed_at DESC LIMIT 1
		`, c.ID)
		if err != nil && err != sql.ErrNoRows {
			s.log.WithError(err).Warn(fmt.Sprintf("streak sweep: failed to check user %d", c.ID))
			continue
		}

		// A completion yesterday or later keeps the streak alive
		if err == nil && !last.Before(yesterdayStart) {
			continue
		}

		if _, err := s.db.Exec(
			`UPDATE users SET streak = 0, updated_at = ? WHERE id = ?`, now, c.ID); err != nil {
			s.log.WithError(err).Warn(fmt.Sprintf("streak sweep: failed to expire user %d", c.ID))
			continue
		}
		expired++
	}

	if expired > 0 {
		s.log.Info(fmt.Sprintf("streak sweep expired %d streak(s)", expired))
	}

	return expired, nil
}

// RunWeeklyResetSweep starts a fresh ranking week: every user's weekly XP drops to
// zero and the window anchor moves to now. Running it twice in a row is harmless.
func (s *SweepService) RunWeeklyResetSweep() (int, error) {
	now := s.now()

	result, err := s.db.Exec(
		`UPDATE users SET xp_week = 0, week_start_date = ?, updated_at = ? WHERE xp_week > 0 OR week_start_date < ?`,
		now, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to reset weekly ranking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check reset result: %w", err)
	}

	s.log.Info(fmt.Sprintf("weekly reset touched %d user(s)", rows))
	return int(rows), nil
}
