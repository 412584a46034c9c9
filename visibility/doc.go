// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package visibility decides which dram fields a caller may see.

# Rule

	role                 released=false        released=true
	organizer            full                  full
	participant/anon     name, broughtBy = ""  full

Order, average rank and rater count are always visible. The organizer role
is per tasting; resolving it is the tasting service's job.

	view := visibility.Tasting(t, role)
	rows := visibility.Rows(ranking.Aggregate(t.Drams, store), role, t.Released)
*/
package visibility
