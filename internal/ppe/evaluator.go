// Package ppe decides which required protective equipment a person is missing.
package ppe

import (
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Evaluate returns the required items the observation does not confirm.
// An item missing from observed counts as not confirmed.
func Evaluate(required domain.PPERequirement, observed domain.EquipmentVector) domain.ViolationSet {
	var missing []domain.Equipment
	for _, item := range required.Required() {
		if !observed[item] {
			missing = append(missing, item)
		}
	}
	return domain.NewViolationSet(missing...)
}
