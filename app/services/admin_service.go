package services

import (
	"context"
	"time"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/app/repositories"
)

// LowStockThreshold marks products as low-stock on the dashboard.
const LowStockThreshold = 5

// AdminService aggregates the dashboard numbers.
type AdminService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
}

func NewAdminService(orders repositories.OrderRepository, products repositories.ProductRepository) *AdminService {
	return &AdminService{orders: orders, products: products}
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalOrders        int64   `json:"totalOrders"`
	OrdersThisMonth    int64   `json:"ordersThisMonth"`
	PendingOrders      int64   `json:"pendingOrders"`
	CompletedOrders    int64   `json:"completedOrders"`
	RevenueThisMonth   float64 `json:"revenueThisMonth"`
	TotalProducts      int64   `json:"totalProducts"`
	OutOfStockProducts int64   `json:"outOfStockProducts"`
	LowStockProducts   int64   `json:"lowStockProducts"`
}

// monthWindow returns [first day of the current month, first day of the next).
func monthWindow(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

// Dashboard collects order and catalog aggregates.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	from, to := monthWindow(time.Now())
	stats := &DashboardStats{}

	var err error
	if stats.TotalOrders, err = s.orders.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.OrdersThisMonth, err = s.orders.CountCreatedBetween(ctx, from, to); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.orders.CountByStatus(ctx, models.OrderPending); err != nil {
		return nil, err
	}
	if stats.CompletedOrders, err = s.orders.CountByStatus(ctx, models.OrderDelivered); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonth, err = s.orders.RevenueBetween(ctx, from, to); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.products.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.OutOfStockProducts, err = s.products.CountOutOfStock(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = s.products.CountLowStock(ctx, LowStockThreshold); err != nil {
		return nil, err
	}

	return stats, nil
}
