package domain

import "sort"

// DailyPoint is one dated observation from a provider time series.
type DailyPoint struct {
	Date        string
	USDPerOunce float64
}

// MonthlyPoint is the latest observation of a calendar month, keyed YYYY-MM.
type MonthlyPoint struct {
	Month       string  `json:"month"`
	USDPerOunce float64 `json:"usd_per_oz"`
}

// CollapseToMonthly keeps one point per month: the one with the lexically greatest
// date, which for ISO dates is the latest. Output is ordered by month.
func CollapseToMonthly(points []DailyPoint) []MonthlyPoint {
	type pick struct {
		date  string
		price float64
	}
	byMonth := make(map[string]pick, len(points))
	for _, p := range points {
		if len(p.Date) < 7 {
			continue
		}
		key := p.Date[:7]
		if cur, ok := byMonth[key]; !ok || p.Date > cur.date {
			byMonth[key] = pick{date: p.Date, price: Round2(p.USDPerOunce)}
		}
	}
	months := make([]string, 0, len(byMonth))
	for k := range byMonth {
		months = append(months, k)
	}
	sort.Strings(months)
	out := make([]MonthlyPoint, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyPoint{Month: m, USDPerOunce: byMonth[m].price})
	}
	return out
}
