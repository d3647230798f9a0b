package aggregate

import (
	"context"
	"f1league/internal/chips"
	"f1league/internal/roster"
	"f1league/internal/snapshot"
	"slices"

	"github.com/shopspring/decimal"
)

type Metric int

const (
	Points Metric = iota
	Budget
)

func (m Metric) String() string {
	if m == Budget {
		return "budget"
	}
	return "points"
}

func (m Metric) of(s snapshot.RaceSnapshot) snapshot.Optional {
	if m == Budget {
		return s.Budget
	}
	return s.Points
}

type SummaryOptions struct {
	Metric Metric
	// Race is the report's race number, nothing after it is fetched.
	Race   int
	Window Window
	// LimitlessDelta is added to the points total of every team that has not
	// used the Limitless chip yet, nil disables the adjustment.
	LimitlessDelta *int
	// Top keeps only the first Top rows after sorting, 0 keeps every row.
	Top int
}

type SummaryRow struct {
	Team   roster.Team
	Chips  string
	Values []snapshot.Optional
	// Total is the sum of points over every race up to the report's race,
	// it is only set for the Points metric.
	Total    decimal.Decimal
	HasTotal bool
}

// sortKey returns the value rows are ranked by.
func (r SummaryRow) sortKey() (decimal.Decimal, bool) {
	if r.HasTotal {
		return r.Total, true
	}
	for i := len(r.Values) - 1; i >= 0; i-- {
		if r.Values[i].Present {
			return r.Values[i].Value, true
		}
	}
	return decimal.Zero, false
}

type Summary struct {
	Metric Metric
	Race   int
	// Races are the race numbers of each column in SummaryRow.Values.
	Races             []int
	Rows              []SummaryRow
	LimitlessAdjusted bool
}

// LeagueSummary builds the points or budget table of every team in the
// league. Missing values are displayed as missing but count as zero in the
// points total.
func (e Engine) LeagueSummary(ctx context.Context, participants []roster.Participant, opts SummaryOptions) (Summary, error) {
	if opts.Race < 1 {
		return Summary{}, ErrInvalidRace
	}

	all := Races(opts.Race)
	window := opts.Window.Apply(all)
	summary := Summary{
		Metric:            opts.Metric,
		Race:              opts.Race,
		Races:             window,
		LimitlessAdjusted: opts.Metric == Points && opts.LimitlessDelta != nil,
	}

	needed := append([]int{opts.Race}, window...)
	if opts.Metric == Points {
		needed = append(needed, all...)
	}

	var fetched outcome
	for _, team := range roster.Teams(participants) {
		results := e.fetchRaces(ctx, team, needed, &fetched)
		if n := failures(results); n > 0 {
			e.tel.ReportWarning(report_engine_summary, "missing races", team.Entry.Name, n)
		}

		row := SummaryRow{Team: team, Chips: chips.None}
		usedLimitless := false
		latest := results[opts.Race]
		if latest.Ok() {
			row.Chips = chips.Summary(latest.Snapshot.Chips, opts.Race, chips.Cumulative)
			usedLimitless = latest.Snapshot.Chips.Used(chips.Limitless, opts.Race, chips.Cumulative)
		}

		row.Values = make([]snapshot.Optional, len(window))
		for i, race := range window {
			result := results[race]
			if result.Ok() {
				row.Values[i] = opts.Metric.of(result.Snapshot)
			}
		}

		if opts.Metric == Points {
			row.HasTotal = true
			for _, race := range all {
				result := results[race]
				if result.Ok() && result.Snapshot.Points.Present {
					row.Total = row.Total.Add(result.Snapshot.Points.Value)
				}
			}
			if opts.LimitlessDelta != nil && !usedLimitless {
				row.Total = row.Total.Add(decimal.NewFromInt(int64(*opts.LimitlessDelta)))
			}
		}

		summary.Rows = append(summary.Rows, row)
	}
	if err := fetched.err(); err != nil {
		return Summary{}, err
	}

	// stable so tied rows keep roster order
	slices.SortStableFunc(summary.Rows, func(a, b SummaryRow) int {
		aKey, aOk := a.sortKey()
		bKey, bOk := b.sortKey()
		switch {
		case aOk && !bOk:
			return -1
		case !aOk && bOk:
			return 1
		case !aOk && !bOk:
			return 0
		}
		return bKey.Cmp(aKey)
	})
	if opts.Top > 0 && len(summary.Rows) > opts.Top {
		summary.Rows = summary.Rows[:opts.Top]
	}

	e.tel.ReportDebug(
		"built league summary",
		"metric", opts.Metric.String(),
		"race", opts.Race,
		"rows", len(summary.Rows),
	)
	return summary, nil
}
