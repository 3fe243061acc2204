package ledger

// The buffer-day reserve policy: buffer_days expresses a personal reserve
// in days of one-tablet-per-day consumption, converted 1:1 into a
// tablet-count reservation against combined stock.

// TotalStock sums current stock across all variants.
func TotalStock(stock map[TabletType]int) int {
	total := 0
	for _, qty := range stock {
		total += qty
	}
	return total
}

// AvailableToSell returns the sellable surplus after reserving bufferDays
// tablets: max(0, totalStock - bufferDays). Never negative.
func AvailableToSell(totalStock, bufferDays int) int {
	available := totalStock - bufferDays
	if available < 0 {
		return 0
	}
	return available
}

// DaysRemaining converts total stock into days of supply at one tablet
// per day.
func DaysRemaining(totalStock int) int {
	if totalStock < 0 {
		return 0
	}
	return totalStock
}
