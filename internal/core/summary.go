package core

// CategoryAmount is a signed total aggregated by category name.
type CategoryAmount struct {
	Name  string
	Cents int64
}

// MonthSummary aggregates one month of a materialized calendar window.
// Totals are signed: expenses subtract, income adds.
type MonthSummary struct {
	Year       int
	Month      int // 1-12
	Expenses   Money
	Income     Money
	NetCents   int64
	ByCategory []CategoryAmount
}

// SummarizeByMonth folds calendar entries into per-month aggregates, keyed
// in the order the months first appear (entries arrive date-ordered, so the
// result is chronological).
func SummarizeByMonth(entries []CalendarEntry) []MonthSummary {
	index := make(map[[2]int]int)
	var out []MonthSummary

	for _, e := range entries {
		key := [2]int{e.Date.Year(), e.Date.Month()}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MonthSummary{Year: key[0], Month: key[1]})
		}
		switch e.Kind {
		case Expense:
			out[i].Expenses.Cents += e.Amount.Cents
		case Income:
			out[i].Income.Cents += e.Amount.Cents
		}
		out[i].NetCents += e.Signed()

		found := false
		for j := range out[i].ByCategory {
			if out[i].ByCategory[j].Name == e.Category {
				out[i].ByCategory[j].Cents += e.Signed()
				found = true
				break
			}
		}
		if !found {
			out[i].ByCategory = append(out[i].ByCategory, CategoryAmount{Name: e.Category, Cents: e.Signed()})
		}
	}

	return out
}
