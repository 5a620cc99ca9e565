package services

import (
	"fmt"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/gamification"
	"github.com/habitforge/habitforge-web/internal/models"
)

type RankingService struct {
	db *database.DB
}

func NewRankingService(db *database.DB) *RankingService {
	return &RankingService{db: db}
}

// rankingOrder sorts by weekly XP, then lifetime XP, then user ID so that equal
// scores still produce a stable, deterministic order.
const rankingOrder = `ORDER BY xp_week DESC, xp DESC, id ASC`

// GetWeeklyRanking returns the top entries of the current week's leaderboard
func (s *RankingService) GetWeeklyRanking(limit int) ([]models.RankingEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	entries := []models.RankingEntry{}
	query := `SELECT id, name, avatar, xp, xp_week, level, streak FROM users ` + rankingOrder + ` LIMIT ?`
	if err := s.db.Select(&entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	for i := range entries {
		entries[i].Position = i + 1
		entries[i].League = gamification.LeagueForXP(entries[i].XP)
	}

	return entries, nil
}

// GetUserPosition computes the user's leaderboard position as one plus the number
// of users strictly ahead under the ranking order. Ties share a prefix, so this
// stays consistent with GetWeeklyRanking.
func (s *RankingService) GetUserPosition(userID int) (*models.RankingEntry, error) {
	var entry models.RankingEntry
	query := `SELECT id, name, avatar, xp, xp_week, level, streak FROM users WHERE id = ?`
	if err := s.db.Get(&entry, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user for ranking: %w", err)
	}

	var ahead int
	countQuery := `
		SELECT COUNT(*) FROM users
		WHERE xp_week > ?
		   OR (xp_week = ? AND xp > ?)
		   OR (xp_week = ? AND xp = ? AND id < ?)
	`
	if err := s.db.Get(&ahead, countQuery,
		entry.XPWeek, entry.XPWeek, entry.XP, entry.XPWeek, entry.XP, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to compute ranking position: %w", err)
	}

	entry.Position = ahead + 1
	entry.League = gamification.LeagueForXP(entry.XP)
	return &entry, nil
}

// GetRankingByLeague returns the weekly leaderboard restricted to one league's
// lifetime-XP band. Positions are relative to the league, not the global board.
func (s *RankingService) GetRankingByLeague(name string, limit int) ([]models.RankingEntry, error) {
	league, ok := gamification.LeagueByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown league: %s", name)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	entries := []models.RankingEntry{}
	query := `SELECT id, name, avatar, xp, xp_week, level, streak FROM users WHERE xp >= ? AND xp <= ? ` +
		rankingOrder + ` LIMIT ?`
	if err := s.db.Select(&entries, query, league.MinXP, league.MaxXP, limit); err != nil {
		return nil, fmt.Errorf("failed to get league ranking: %w", err)
	}

	for i := range entries {
		entries[i].Position = i + 1
		entries[i].League = league
	}

	return entries, nil
}
