package domain

import "github.com/shopspring/decimal"

// DashboardStats is the fan-out/fan-in aggregation backing the admin
// dashboard. Each figure comes from an independent query; a failed
// query leaves its figure zeroed and its name in FailedStats.
type DashboardStats struct {
	ClientsPerSetor     map[Setor]int   `json:"clientsPerSetor"`
	TasksPerStatus      map[TaskStatus]int `json:"tasksPerStatus"`
	DocumentsThisMonth  int             `json:"documentsThisMonth"`
	ActiveConversations int             `json:"activeConversations"`
	UnknownContacts     int             `json:"unknownContacts"`
	MonthlyFeeRevenue   decimal.Decimal `json:"monthlyFeeRevenue"`
	FailedStats         []string        `json:"failedStats,omitempty"`
}
