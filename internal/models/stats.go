package models

import "github.com/shopspring/decimal"

type RevenuePeriod string

const (
	PeriodDay   RevenuePeriod = "day"
	PeriodMonth RevenuePeriod = "month"
	PeriodYear  RevenuePeriod = "year"
)

type RevenuePoint struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type BestSeller struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type DashboardSummary struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	TotalCustomers  int             `json:"total_customers"`
	TotalProducts   int             `json:"total_products"`
	LowStockProduct int             `json:"low_stock_products"`
}

type CategorySales struct {
	CategoryID   int             `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int             `json:"quantity"`
	Revenue      decimal.Decimal `json:"revenue"`
}
