package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilterRequest filtros de query comunes a reportes y estadísticas.
// Fechas en formato "2006-01-02".
type ReportFilterRequest struct {
	ClientID    string `query:"client_id"`
	DateFrom    string `query:"date_from"`
	DateTo      string `query:"date_to"`
	ExpiredOnly bool   `query:"expired_only"`
}

// ActiveCondicionalDTO una condicional activa en el reporte, con los campos
// derivados recalculados al momento de la consulta.
type ActiveCondicionalDTO struct {
	ID            int64                     `json:"id"`
	ClientID      int64                     `json:"client_id"`
	ClientName    string                    `json:"client_name,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	ReturnDate    time.Time                 `json:"return_date"`
	DaysRemaining int                       `json:"days_remaining"`
	Status        string                    `json:"status"` // active | expired
	ItemCount     int                       `json:"item_count"`
	TotalValue    decimal.Decimal           `json:"total_value"`
	Items         []CondicionalItemResponse `json:"items"`
}

// ActiveReportStats agregados del reporte de activas.
type ActiveReportStats struct {
	Count         int             `json:"count"`
	TotalItems    int             `json:"total_items"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ExpiredCount  int             `json:"expired_count"`
	DueWithin7Day int             `json:"due_within_7_days"`
}

// ActiveReportResponse reporte de condicionales activas.
type ActiveReportResponse struct {
	Condicionales []ActiveCondicionalDTO `json:"condicionales"`
	Stats         ActiveReportStats      `json:"stats"`
}

// ReturnedCondicionalDTO una condicional devuelta en el reporte.
type ReturnedCondicionalDTO struct {
	ID            int64           `json:"id"`
	ClientID      int64           `json:"client_id"`
	ClientName    string          `json:"client_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ReturnDate    time.Time       `json:"return_date"`
	Notes         string          `json:"notes,omitempty"`
	ItemsReturned int             `json:"items_returned"`
	ValueReturned decimal.Decimal `json:"value_returned"`
}

// ReturnedReportStats agregados del reporte de devueltas.
type ReturnedReportStats struct {
	Count              int             `json:"count"`
	TotalItemsReturned int             `json:"total_items_returned"`
	TotalValueReturned decimal.Decimal `json:"total_value_returned"`
}

// ReturnedReportResponse reporte de condicionales devueltas.
type ReturnedReportResponse struct {
	Condicionales []ReturnedCondicionalDTO `json:"condicionales"`
	Stats         ReturnedReportStats      `json:"stats"`
}

// CondicionalStatsResponse conteos simples para GET /api/condicionales/stats.
type CondicionalStatsResponse struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Returned int `json:"returned"`
}
