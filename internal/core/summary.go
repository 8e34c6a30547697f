package core

import "github.com/shopspring/decimal"

// Summary holds the sales totals of a month window.
type Summary struct {
	TotalAmount  float64 `json:"totalAmount"`
	Count        int     `json:"count"`
	TotalNotSold int     `json:"totalNotSold"`
}

// CategoryCount is the number of records sharing a category value.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summarize sums the price of sold records and counts the unsold ones.
// Each record contributes to exactly one side. The sum is not rounded.
func Summarize(records []Transaction) Summary {
	var s Summary
	total := decimal.Zero
	for _, t := range records {
		if t.Sold {
			total = total.Add(decimal.NewFromFloat(t.Price))
			s.Count++
			continue
		}
		s.TotalNotSold++
	}
	s.TotalAmount = total.InexactFloat64()
	return s
}

// CountCategories groups records by their exact category value, in the order
// each category first appears.
func CountCategories(records []Transaction) []CategoryCount {
	out := make([]CategoryCount, 0)
	index := make(map[string]int)
	for _, t := range records {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryCount{Category: t.Category})
		}
		out[i].Count++
	}
	return out
}
