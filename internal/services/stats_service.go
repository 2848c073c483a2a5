package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-cosmetics/internal/models"
)

const lowStockThreshold = 5

// StatsService computes the admin dashboard figures from live orders.
// Cancelled orders never count towards revenue.
type StatsService struct {
	orders     *OrderService
	products   *ProductService
	categories *CategoryService
	users      *UserService
}

func NewStatsService(orders *OrderService, products *ProductService, categories *CategoryService, users *UserService) *StatsService {
	return &StatsService{orders: orders, products: products, categories: categories, users: users}
}

func periodKey(t time.Time, period models.RevenuePeriod) (string, error) {
	switch period {
	case models.PeriodDay:
		return t.Format("2006-01-02"), nil
	case models.PeriodMonth:
		return t.Format("2006-01"), nil
	case models.PeriodYear:
		return t.Format("2006"), nil
	}
	return "", fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
}

// Revenue groups non-cancelled orders in [from, to) by day, month or year.
func (s *StatsService) Revenue(period models.RevenuePeriod, from, to time.Time) ([]models.RevenuePoint, error) {
	if _, err := periodKey(time.Time{}, period); err != nil {
		return nil, err
	}

	buckets := map[string]*models.RevenuePoint{}
	for _, o := range s.orders.ListAll(models.OrderFilter{From: from, To: to}) {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		key, _ := periodKey(o.CreatedAt, period)
		p, ok := buckets[key]
		if !ok {
			p = &models.RevenuePoint{Period: key, Revenue: decimal.Zero}
			buckets[key] = p
		}
		p.Revenue = p.Revenue.Add(o.Total)
		p.Orders++
	}

	out := make([]models.RevenuePoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b models.RevenuePoint) int { return strings.Compare(a.Period, b.Period) })
	return out, nil
}

func (s *StatsService) BestSellers(limit int) []models.BestSeller {
	agg := map[int]*models.BestSeller{}
	for _, o := range s.orders.Snapshot() {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		for _, d := range o.Details {
			b, ok := agg[d.ProductID]
			if !ok {
				b = &models.BestSeller{ProductID: d.ProductID, ProductName: d.ProductName, Revenue: decimal.Zero}
				agg[d.ProductID] = b
			}
			b.Quantity += d.Quantity
			b.Revenue = b.Revenue.Add(d.LineTotal)
		}
	}

	out := make([]models.BestSeller, 0, len(agg))
	for _, b := range agg {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b models.BestSeller) int {
		if a.Quantity != b.Quantity {
			return b.Quantity - a.Quantity
		}
		return a.ProductID - b.ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *StatsService) Dashboard() models.DashboardSummary {
	summary := models.DashboardSummary{
		TotalRevenue:    decimal.Zero,
		TotalCustomers:  s.users.CountCustomers(),
		TotalProducts:   s.products.Count(),
		LowStockProduct: s.products.LowStock(lowStockThreshold),
	}
	for _, o := range s.orders.Snapshot() {
		summary.TotalOrders++
		if o.Status == models.OrderStatusPending {
			summary.PendingOrders++
		}
		if o.Status != models.OrderStatusCancelled {
			summary.TotalRevenue = summary.TotalRevenue.Add(o.Total)
		}
	}
	return summary
}

// SalesChart returns twelve monthly points for the year, zero-filled.
func (s *StatsService) SalesChart(year int) []models.RevenuePoint {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	points, _ := s.Revenue(models.PeriodMonth, from, from.AddDate(1, 0, 0))

	byMonth := make(map[string]models.RevenuePoint, len(points))
	for _, p := range points {
		byMonth[p.Period] = p
	}
	out := make([]models.RevenuePoint, 12)
	for m := 0; m < 12; m++ {
		key := from.AddDate(0, m, 0).Format("2006-01")
		if p, ok := byMonth[key]; ok {
			out[m] = p
		} else {
			out[m] = models.RevenuePoint{Period: key, Revenue: decimal.Zero}
		}
	}
	return out
}

func (s *StatsService) CategoryChart() []models.CategorySales {
	agg := map[int]*models.CategorySales{}
	for _, o := range s.orders.Snapshot() {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		for _, d := range o.Details {
			c, ok := agg[d.CategoryID]
			if !ok {
				c = &models.CategorySales{CategoryID: d.CategoryID, Revenue: decimal.Zero, CategoryName: "Khác"}
				if cat, found := s.categories.Get(d.CategoryID); found {
					c.CategoryName = cat.Name
				}
				agg[d.CategoryID] = c
			}
			c.Quantity += d.Quantity
			c.Revenue = c.Revenue.Add(d.LineTotal)
		}
	}

	out := make([]models.CategorySales, 0, len(agg))
	for _, c := range agg {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b models.CategorySales) int { return b.Revenue.Cmp(a.Revenue) })
	return out
}
