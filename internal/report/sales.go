// Package report computes the sales figures the admin dashboard and sales
// screen show, and exports the filtered order view as CSV. Everything is
// derived in memory from the order list fetched upstream; nothing here is
// persisted.
package report

import (
	"sort"
	"time"

	"storefront-gateway/internal/models"
	"storefront-gateway/internal/search"
)

// DateFilter selects an inclusive lower bound on order creation time.
type DateFilter string

// Date filter values
const (
	DateAll   DateFilter = "all"
	DateToday DateFilter = "today"
	DateWeek  DateFilter = "week"
	DateMonth DateFilter = "month"
	DateYear  DateFilter = "year"
)

// Valid reports whether f is a known date filter.
func (f DateFilter) Valid() bool {
	switch f {
	case DateAll, DateToday, DateWeek, DateMonth, DateYear:
		return true
	}
	return false
}

// Bound returns the filter's inclusive lower bound relative to now. The
// second result is false for DateAll, which applies no bound.
func (f DateFilter) Bound(now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch f {
	case DateToday:
		return midnight, true
	case DateWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case DateMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case DateYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

// ProductSales is a product's total quantity sold across completed orders.
type ProductSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// SalesSnapshot is the derived view the sales screen renders. It is
// recomputed on every filter change and never persisted.
type SalesSnapshot struct {
	TotalSales        int            `json:"totalSales"`
	TotalRevenue      float64        `json:"totalRevenue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	TodaySales        float64        `json:"todaySales"`
	ThisMonthSales    float64        `json:"thisMonthSales"`
	TopProducts       []ProductSales `json:"topProducts"`
}

// ViewFilter narrows the order list shown in the sales table.
type ViewFilter struct {
	Query  string     // substring match on order number and customer name
	Status string     // equality, "" or "all" disables
	Date   DateFilter // inclusive lower bound on creation time
}

// FilterOrders applies the view filter, preserving input order.
func FilterOrders(orders []models.Order, f ViewFilter, now time.Time) []models.Order {
	filtered := search.Filter(orders, f.Query, func(o models.Order) []string {
		return []string{o.OrderNumber, o.CustomerName}
	})

	if f.Status != "" && f.Status != "all" {
		kept := make([]models.Order, 0, len(filtered))
		for _, o := range filtered {
			if o.Status == f.Status {
				kept = append(kept, o)
			}
		}
		filtered = kept
	}

	if bound, ok := f.Date.Bound(now); ok {
		kept := make([]models.Order, 0, len(filtered))
		for _, o := range filtered {
			if !o.CreatedAt.Before(bound) {
				kept = append(kept, o)
			}
		}
		filtered = kept
	}

	return filtered
}

// Aggregate computes the sales snapshot. The headline figures come from the
// completed orders within the filtered view; the today/this-month figures are
// always computed from the full order list so they stay current regardless of
// the active filter.
func Aggregate(view, all []models.Order, now time.Time) SalesSnapshot {
	completed := completedOnly(view)

	var totalRevenue float64
	for _, o := range completed {
		totalRevenue += o.Total
	}

	var average float64
	if len(completed) > 0 {
		average = totalRevenue / float64(len(completed))
	}

	todayBound, _ := DateToday.Bound(now)
	monthBound, _ := DateMonth.Bound(now)

	var todaySales, thisMonthSales float64
	for _, o := range completedOnly(all) {
		if !o.CreatedAt.Before(todayBound) {
			todaySales += o.Total
		}
		if !o.CreatedAt.Before(monthBound) {
			thisMonthSales += o.Total
		}
	}

	return SalesSnapshot{
		TotalSales:        len(completed),
		TotalRevenue:      totalRevenue,
		AverageOrderValue: average,
		TodaySales:        todaySales,
		ThisMonthSales:    thisMonthSales,
		TopProducts:       topProducts(completed, 5),
	}
}

func completedOnly(orders []models.Order) []models.Order {
	completed := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == models.OrderStatusCompleted {
			completed = append(completed, o)
		}
	}
	return completed
}

// topProducts sums quantities per product name across the given orders and
// returns the top n, ties broken by first encounter.
func topProducts(orders []models.Order, n int) []ProductSales {
	quantities := make(map[string]int)
	firstSeen := make(map[string]int)

	for _, o := range orders {
		for _, item := range o.Items {
			if _, seen := quantities[item.ProductName]; !seen {
				firstSeen[item.ProductName] = len(firstSeen)
			}
			quantities[item.ProductName] += item.Quantity
		}
	}

	ranked := make([]ProductSales, 0, len(quantities))
	for name, qty := range quantities {
		ranked = append(ranked, ProductSales{Name: name, Quantity: qty})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return firstSeen[ranked[i].Name] < firstSeen[ranked[j].Name]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
