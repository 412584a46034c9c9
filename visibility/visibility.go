// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package visibility

import "github.com/danielhkuo/blind-dram/models"

// ShowIdentity reports whether a caller with role may see dram names and
// who brought them. Numeric aggregates are never gated.
func ShowIdentity(role models.Role, released bool) bool {
	return released || role == models.RoleOrganizer
}

// Drams returns a copy of drams with identities blanked when the caller may
// not see them.
func Drams(drams []models.Dram, role models.Role, released bool) []models.Dram {
	show := ShowIdentity(role, released)
	out := make([]models.Dram, len(drams))
	for i, d := range drams {
		out[i] = models.Dram{Order: d.Order}
		if show {
			out[i].Name = d.Name
			out[i].BroughtBy = d.BroughtBy
		}
	}
	return out
}

// Rows applies the same rule to leaderboard rows. AvgRank and Count are kept.
func Rows(rows []models.LeaderboardRow, role models.Role, released bool) []models.LeaderboardRow {
	show := ShowIdentity(role, released)
	out := make([]models.LeaderboardRow, len(rows))
	for i, r := range rows {
		out[i] = r
		if r.AvgRank != nil {
			avg := *r.AvgRank
			out[i].AvgRank = &avg
		}
		if !show {
			out[i].Name = ""
			out[i].BroughtBy = ""
		}
	}
	return out
}

// Tasting builds the view of t that role may see.
func Tasting(t models.Tasting, role models.Role) models.TastingView {
	return models.TastingView{
		ID:        t.ID,
		JoinCode:  t.JoinCode,
		Title:     t.Title,
		Host:      t.Host,
		Released:  t.Released,
		Completed: t.Completed,
		Drams:     Drams(t.Drams, role, t.Released),
	}
}
