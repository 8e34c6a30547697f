package core

import "math"

// PriceBucket is one bar of the price histogram. A price p belongs to the
// bucket when Min <= p < Max.
type PriceBucket struct {
	Label string
	Min   float64
	Max   float64
}

// PriceBuckets are the fixed histogram ranges in display order. Each upper
// bound is the next bucket's lower bound, so 100 lands in "0-100" and 101 in
// "101-200".
var PriceBuckets = [10]PriceBucket{
	{Label: "0-100", Min: 0, Max: 101},
	{Label: "101-200", Min: 101, Max: 201},
	{Label: "201-300", Min: 201, Max: 301},
	{Label: "301-400", Min: 301, Max: 401},
	{Label: "401-500", Min: 401, Max: 501},
	{Label: "501-600", Min: 501, Max: 601},
	{Label: "601-700", Min: 601, Max: 701},
	{Label: "701-800", Min: 701, Max: 801},
	{Label: "801-900", Min: 801, Max: 901},
	{Label: "901-above", Min: 901, Max: math.Inf(1)},
}

// Contains reports whether price falls in the bucket.
func (b PriceBucket) Contains(price float64) bool {
	return price >= b.Min && price < b.Max
}

// BucketFor returns the index of the bucket holding price, or -1.
func BucketFor(price float64) int {
	for i, b := range PriceBuckets {
		if b.Contains(price) {
			return i
		}
	}
	return -1
}

// BucketCount is a histogram entry.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BuildHistogram counts records per price bucket. All ten buckets are
// returned in order, including empty ones.
func BuildHistogram(records []Transaction) []BucketCount {
	out := make([]BucketCount, len(PriceBuckets))
	for i, b := range PriceBuckets {
		out[i].Label = b.Label
	}
	for _, t := range records {
		if i := BucketFor(t.Price); i >= 0 {
			out[i].Count++
		}
	}
	return out
}
