// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"sort"

	"github.com/danielhkuo/blind-dram/models"
)

// Entry is one (dram order, points) pair from a single participant.
type Entry struct {
	Order  int
	Points int
}

// FractionalRanks ranks entries by descending points. Tied entries share the
// mean of the 1-based positions they occupy, so a tie block spanning
// positions start..end gives every member (start+end)/2.
func FractionalRanks(entries []Entry) map[int]float64 {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].Order < sorted[j].Order
	})

	ranks := make(map[int]float64, len(sorted))
	for start := 0; start < len(sorted); {
		end := start
		for end+1 < len(sorted) && sorted[end+1].Points == sorted[start].Points {
			end++
		}
		rank := float64(start+1+end+1) / 2
		for k := start; k <= end; k++ {
			ranks[sorted[k].Order] = rank
		}
		start = end + 1
	}
	return ranks
}

type accumulator struct {
	sum   float64
	count int
}

// Aggregate computes the leaderboard for a tasting: each participant's
// ratings are turned into fractional ranks, and each dram's ranks are
// averaged over the participants who rated it. Ratings for orders that are
// not drams of the tasting are ignored.
//
// Rows are ordered rated-first, then by ascending average rank, then by
// descending rater count, then by ascending order. Identity fields are
// copied as-is; redaction is the caller's job.
func Aggregate(drams []models.Dram, store models.RatingStore) []models.LeaderboardRow {
	known := make(map[int]struct{}, len(drams))
	for _, d := range drams {
		known[d.Order] = struct{}{}
	}

	participants := make([]string, 0, len(store))
	for p := range store {
		participants = append(participants, p)
	}
	sort.Strings(participants)

	agg := make(map[int]*accumulator, len(drams))
	entries := make([]Entry, 0, len(drams))
	for _, p := range participants {
		entries = entries[:0]
		for order, r := range store[p] {
			if _, ok := known[order]; !ok {
				continue
			}
			entries = append(entries, Entry{Order: order, Points: r.Points})
		}

		for order, rank := range FractionalRanks(entries) {
			a, ok := agg[order]
			if !ok {
				a = &accumulator{}
				agg[order] = a
			}
			a.sum += rank
			a.count++
		}
	}

	rows := make([]models.LeaderboardRow, len(drams))
	for i, d := range drams {
		row := models.LeaderboardRow{
			Order:     d.Order,
			Name:      d.Name,
			BroughtBy: d.BroughtBy,
		}
		if a, ok := agg[d.Order]; ok && a.count > 0 {
			avg := a.sum / float64(a.count)
			row.AvgRank = &avg
			row.Count = a.count
		}
		rows[i] = row
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
	return rows
}

func less(a, b models.LeaderboardRow) bool {
	// 1. Rated drams before unrated ones
	if (a.AvgRank == nil) != (b.AvgRank == nil) {
		return a.AvgRank != nil
	}

	if a.AvgRank != nil {
		// 2. Lower average rank wins
		if *a.AvgRank != *b.AvgRank {
			return *a.AvgRank < *b.AvgRank
		}

		// 3. More raters win at equal rank
		if a.Count != b.Count {
			return a.Count > b.Count
		}
	}

	// 4. Ascending order
	return a.Order < b.Order
}
