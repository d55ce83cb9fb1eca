package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Camera representa uma câmera IP cadastrada
type Camera struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Username  string       `json:"username"`
	Password  string       `json:"-"`
	IPAddress string       `json:"ip_address"`
	Policy    AccessPolicy `json:"access_policy"`
	CreatedAt time.Time    `json:"created_at"`
}

// AccessPolicy decides whether a subject seen by a camera is authorized.
// WindowStart/WindowEnd are minutes since midnight (UTC); equal values mean
// the restriction applies all day. Windows may wrap past midnight.
type AccessPolicy struct {
	Restricted       bool     `json:"restricted"`
	AllowedEmployees []string `json:"allowed_employees,omitempty"`
	WindowStart      int      `json:"window_start_minute"`
	WindowEnd        int      `json:"window_end_minute"`
}

// Active reports whether the restriction is in force at t
func (p AccessPolicy) Active(t time.Time) bool {
	if !p.Restricted {
		return false
	}
	if p.WindowStart == p.WindowEnd {
		return true
	}
	t = t.UTC()
	minute := t.Hour()*60 + t.Minute()
	if p.WindowStart < p.WindowEnd {
		return minute >= p.WindowStart && minute < p.WindowEnd
	}
	return minute >= p.WindowStart || minute < p.WindowEnd
}

// Allows reports whether a known employee may be present. An empty allow
// list admits every enrolled employee.
func (p AccessPolicy) Allows(employeeID string) bool {
	if len(p.AllowedEmployees) == 0 {
		return true
	}
	return slices.Contains(p.AllowedEmployees, employeeID)
}

// Unauthorized applies the policy to a resolved identity at time t.
// known=false means the face did not match any enrolled employee.
func (p AccessPolicy) Unauthorized(employeeID string, known bool, t time.Time) bool {
	if !p.Active(t) {
		return false
	}
	if !known {
		return true
	}
	return !p.Allows(employeeID)
}
