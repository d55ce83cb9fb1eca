package domain

import (
	"time"
)

// Employee representa um colaborador cadastrado com seu embedding facial
type Employee struct {
	EmployeeID string    `json:"employee_id"`
	Embedding  []float64 `json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmployeeSummary is the public projection of an enrolled employee
type EmployeeSummary struct {
	EmployeeID string    `json:"employee_id"`
	Dimension  int       `json:"dimension"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}
