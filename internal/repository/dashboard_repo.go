package repository

import (
	"time"

	"stocky-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetBusinessStats(businessID uuid.UUID, now time.Time) (*BusinessStats, error)
	GetSalesMovement(businessID uuid.UUID, startDate, endDate time.Time) ([]SalesMovementData, error)
	GetPlatformStats() (*PlatformStats, error)
}

// SalesMovementData is one chart point per day
type SalesMovementData struct {
	Date    string `json:"date"`
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"`
}

type BusinessStats struct {
	ActiveProducts   int64 `json:"active_products"`
	ExpiringSoon     int64 `json:"expiring_soon"`
	SoldOutProducts  int64 `json:"sold_out_products"`
	OpenOrders       int64 `json:"open_orders"`
	Revenue          int64 `json:"revenue"`
	CarbonSavedGrams int64 `json:"carbon_saved_grams"`
}

type PlatformStats struct {
	Users            int64 `json:"users"`
	Businesses       int64 `json:"businesses"`
	ActiveProducts   int64 `json:"active_products"`
	Orders           int64 `json:"orders"`
	CompletedOrders  int64 `json:"completed_orders"`
	CarbonSavedGrams int64 `json:"carbon_saved_grams"`
}

var openOrderStatuses = []model.OrderStatus{model.OrderPending, model.OrderConfirmed, model.OrderReady}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) GetBusinessStats(businessID uuid.UUID, now time.Time) (*BusinessStats, error) {
	var stats BusinessStats
	products := func() *gorm.DB {
		return r.db.Model(&model.Product{}).Where("business_id = ?", businessID)
	}
	orders := func() *gorm.DB {
		return r.db.Model(&model.Order{}).Where("business_id = ?", businessID)
	}

	if err := products().Where("status = ?", model.ProductActive).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := products().
		Where("status = ? AND expiry_date BETWEEN ? AND ?", model.ProductActive, now, now.Add(48*time.Hour)).
		Count(&stats.ExpiringSoon).Error; err != nil {
		return nil, err
	}
	if err := products().Where("status = ?", model.ProductSoldOut).Count(&stats.SoldOutProducts).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("status IN ?", openOrderStatuses).Count(&stats.OpenOrders).Error; err != nil {
		return nil, err
	}

	var totals struct {
		Revenue int64
		Carbon  int64
	}
	if err := orders().
		Where("status = ?", model.OrderCompleted).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(carbon_saved_grams), 0) AS carbon").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.Revenue = totals.Revenue
	stats.CarbonSavedGrams = totals.Carbon

	return &stats, nil
}

func (r *dashboardRepo) GetSalesMovement(businessID uuid.UUID, startDate, endDate time.Time) ([]SalesMovementData, error) {
	results := []SalesMovementData{}

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			TO_CHAR(DATE(completed_at), 'YYYY-MM-DD') as date,
			COUNT(*) as orders,
			COALESCE(SUM(total_amount), 0) as revenue
		`).
		Where("business_id = ? AND status = ? AND completed_at BETWEEN ? AND ?",
			businessID, model.OrderCompleted, startDate, endDate).
		Group("DATE(completed_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Orders, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *dashboardRepo) GetPlatformStats() (*PlatformStats, error) {
	var stats PlatformStats

	if err := r.db.Model(&model.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Business{}).Count(&stats.Businesses).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("status = ?", model.ProductActive).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Order{}).Count(&stats.Orders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Order{}).Where("status = ?", model.OrderCompleted).Count(&stats.CompletedOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Order{}).
		Where("status = ?", model.OrderCompleted).
		Select("COALESCE(SUM(carbon_saved_grams), 0)").
		Scan(&stats.CarbonSavedGrams).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
