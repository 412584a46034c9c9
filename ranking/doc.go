// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ranking turns raw per-participant points into the tasting leaderboard.

# Fractional Ranking

Each participant's points are sorted descending and converted to ranks.
Ties share the average of the positions they occupy:

	ranks := ranking.FractionalRanks([]ranking.Entry{
		{Order: 1, Points: 90},
		{Order: 2, Points: 90},
		{Order: 3, Points: 70},
	})
	// ranks = {1: 1.5, 2: 1.5, 3: 3}

Ranks rather than raw points are aggregated, so a participant who scores
everything between 80 and 90 weighs the same as one who uses the whole
0-100 scale.

# Aggregation

	rows := ranking.Aggregate(tasting.Drams, store)

Each row carries the dram's average rank over everyone who rated it and the
number of raters. A dram nobody rated has a nil AvgRank and sorts last.
Lexicographic ordering:

 1. Rated drams before unrated drams
 2. Lower average rank
 3. Higher rater count
 4. Lower dram order

Aggregate is a pure function of its inputs and safe for concurrent use.
*/
package ranking
