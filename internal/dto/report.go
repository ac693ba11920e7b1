package dto

import "github.com/contaflow/backoffice/internal/core/domain"

// DashboardResponse wraps the fan-out statistics.
type DashboardResponse struct {
	Stats domain.DashboardStats `json:"stats"`
}
