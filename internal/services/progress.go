package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/gamification"
	"github.com/habitforge/habitforge-web/internal/models"
)

type ProgressService struct {
	db *database.DB

	// now is injectable so tests can pin the clock
	now func() time.Time
}

func NewProgressService(db *database.DB) *ProgressService {
	return &ProgressService{db: db, now: time.Now}
}

// DailyProgress is one day's completion activity.
type DailyProgress struct {
	Date        string `json:"date"`
	Completions int    `json:"completions"`
	XPEarned    int    `json:"xp_earned"`
}

// DashboardSummary is the aggregate view for the dashboard header.
type DashboardSummary struct {
	User           *models.User               `json:"user"`
	Progress       gamification.LevelProgress `json:"progress"`
	League         gamification.League        `json:"league"`
	CompletedToday int                        `json:"completed_today"`
	ActiveHabits   int                        `json:"active_habits"`
	TopCategory    string                     `json:"top_category,omitempty"`
}

// GetDailyProgress returns per-day completion counts and earned XP for the last
// `days` days, oldest first. Days without activity are filled in as zero rows so
// charts never have to interpolate gaps.
func (s *ProgressService) GetDailyProgress(userID, days int) ([]DailyProgress, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	now := s.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	type row struct {
		Day         string `db:"day"`
		Completions int    `db:"completions"`
		XPEarned    int    `db:"xp_earned"`
	}
	rows := []row{}
	query := `
		SELECT date(hc.completed_at, 'localtime') AS day,
			COUNT(*) AS completions,
			COALESCE(SUM(hc.xp_earned), 0) AS xp_earned
		FROM habit_completions hc
		JOIN habits h ON h.id = hc.habit_id
		WHERE h.user_id = ? AND hc.completed_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	if err := s.db.Select(&rows, query, userID, since); err != nil {
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}

	byDay := make(map[string]row, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	progress := make([]DailyProgress, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		entry := DailyProgress{Date: day}
		if r, ok := byDay[day]; ok {
			entry.Completions = r.Completions
			entry.XPEarned = r.XPEarned
		}
		progress = append(progress, entry)
	}

	return progress, nil
}

// GetDashboardSummary assembles the current user snapshot shown on the dashboard
func (s *ProgressService) GetDashboardSummary(userID int) (*DashboardSummary, error) {
	var user models.User
	if err := s.db.Get(&user, `SELECT * FROM users WHERE id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	summary := &DashboardSummary{
		User:     &user,
		Progress: gamification.ProgressInLevel(user.XP, user.Level),
		League:   gamification.LeagueForXP(user.XP),
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Get(&summary.CompletedToday,
		`SELECT COUNT(*) FROM habit_completions hc JOIN habits h ON h.id = hc.habit_id WHERE h.user_id = ? AND hc.completed_at >= ?`,
		userID, todayStart); err != nil {
		return nil, fmt.Errorf("failed to count today's completions: %w", err)
	}

	if err := s.db.Get(&summary.ActiveHabits,
		`SELECT COUNT(*) FROM habits WHERE user_id = ? AND is_active = TRUE`, userID); err != nil {
		return nil, fmt.Errorf("failed to count active habits: %w", err)
	}

	// Most-completed category, if there is any activity at all
	var topCategory string
	err := s.db.Get(&topCategory, `
		SELECT h.category FROM habit_completions hc
		JOIN habits h ON h.id = hc.habit_id
		WHERE h.user_id = ?
		GROUP BY h.category
		ORDER BY COUNT(*) DESC, h.category ASC
		LIMIT 1
	`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get top category: %w", err)
	}
	summary.TopCategory = topCategory

	return summary, nil
}

// GetHeatmap returns completion counts per day for one calendar year, keyed by
// "2006-01-02". Only days with activity appear.
func (s *ProgressService) GetHeatmap(userID, year int) (map[string]int, error) {
	if year == 0 {
		year = s.now().Year()
	}

	type row struct {
		Day   string `db:"day"`
		Count int    `db:"count"`
	}
	rows := []row{}
	query := `
		SELECT date(hc.completed_at, 'localtime') AS day, COUNT(*) AS count
		FROM habit_completions hc
		JOIN habits h ON h.id = hc.habit_id
		WHERE h.user_id = ? AND strftime('%Y', hc.completed_at, 'localtime') = ?
		GROUP BY day
	`
	if err := s.db.Select(&rows, query, userID, fmt.Sprintf("%d", year)); err != nil {
		return nil, fmt.Errorf("failed to get heatmap: %w", err)
	}

	heatmap := make(map[string]int, len(rows))
	for _, r := range rows {
		heatmap[r.Day] = r.Count
	}

	return heatmap, nil
}
