package gamification

import "math"

// League is a cosmetic band of lifetime XP used for ranking display. It is always
// derived from XP, never stored.
type League struct {
	Name  string `json:"name"`
	MinXP int    `json:"min_xp"`
	MaxXP int    `json:"max_xp"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Leagues holds the bands in ascending MinXP order. The top band is unbounded.
var Leagues = []League{
	{Name: "Bronze", MinXP: 0, MaxXP: 499, Color: "#cd7f32", Icon: "🥉"},
	{Name: "Silver", MinXP: 500, MaxXP: 999, Color: "#c0c0c0", Icon: "🥈"},
	{Name: "Gold", MinXP: 1000, MaxXP: 1999, Color: "#ffd700", Icon: "🥇"},
	{Name: "Platinum", MinXP: 2000, MaxXP: 3999, Color: "#e5e4e2", Icon: "💎"},
	{Name: "Diamond", MinXP: 4000, MaxXP: 7999, Color: "#b9f2ff", Icon: "💠"},
	{Name: "Master", MinXP: 8000, MaxXP: 15999, Color: "#9d00ff", Icon: "👑"},
	{Name: "Legendary", MinXP: 16000, MaxXP: math.MaxInt, Color: "#ff6b6b", Icon: "⚡"},
}

// LeagueForXP returns the first band containing xp, falling back to the lowest band.
// The fallback is unreachable while the bands cover 0..∞, but a bad table must not
// turn into a crash.
func LeagueForXP(xp int) League {
	for _, league := range Leagues {
		if xp >= league.MinXP && xp <= league.MaxXP {
			return league
		}
	}
	return Leagues[0]
}

// LeagueByName looks up a band by its display name.
func LeagueByName(name string) (League, bool) {
	for _, league := range Leagues {
		if league.Name == name {
			return league, true
		}
	}
	return League{}, false
}
