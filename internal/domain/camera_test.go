package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestAccessPolicy_Active(t *testing.T) {
	tests := []struct {
		name   string
		policy AccessPolicy
		t      time.Time
		want   bool
	}{
		{"unrestricted", AccessPolicy{}, at(12, 0), false},
		{"all day", AccessPolicy{Restricted: true}, at(3, 0), true},
		{"inside window", AccessPolicy{Restricted: true, WindowStart: 8 * 60, WindowEnd: 18 * 60}, at(9, 30), true},
		{"window end is exclusive", AccessPolicy{Restricted: true, WindowStart: 8 * 60, WindowEnd: 18 * 60}, at(18, 0), false},
		{"overnight window late", AccessPolicy{Restricted: true, WindowStart: 22 * 60, WindowEnd: 6 * 60}, at(23, 15), true},
		{"overnight window early", AccessPolicy{Restricted: true, WindowStart: 22 * 60, WindowEnd: 6 * 60}, at(5, 59), true},
		{"overnight window outside", AccessPolicy{Restricted: true, WindowStart: 22 * 60, WindowEnd: 6 * 60}, at(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Active(tt.t))
		})
	}
}

func TestAccessPolicy_Unauthorized(t *testing.T) {
	open := AccessPolicy{Restricted: true}
	allowList := AccessPolicy{Restricted: true, AllowedEmployees: []string{"E1"}}
	now := at(10, 0)

	assert.True(t, open.Unauthorized("", false, now), "unknown face in restricted zone")
	assert.False(t, open.Unauthorized("E7", true, now), "empty allow list admits employees")
	assert.False(t, allowList.Unauthorized("E1", true, now))
	assert.True(t, allowList.Unauthorized("E2", true, now))
	assert.False(t, AccessPolicy{}.Unauthorized("", false, now), "unrestricted camera never alerts")
}
