package pipeline

import (
	"slices"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

// minAssignIoU is the overlap below which a detected person is not
// attributed to a track
const minAssignIoU = 0.3

func iou(a, b domain.BoundingBox) float64 {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	inter := (x2 - x1) * (y2 - y1)
	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

type pair struct {
	det, person int
	overlap     float64
}

// assignEquipment fills the equipment vector of detections that have a box
// but no vector, greedily taking the highest-overlap pairs first. Each person
// is assigned to at most one track.
func assignEquipment(dets []domain.Detection, persons []provider.Person) int {
	var pairs []pair
	for i, d := range dets {
		if d.Equipment != nil || d.BoundingBox == nil {
			continue
		}
		for j, p := range persons {
			if o := iou(*d.BoundingBox, p.BoundingBox); o >= minAssignIoU {
				pairs = append(pairs, pair{det: i, person: j, overlap: o})
			}
		}
	}

	slices.SortStableFunc(pairs, func(a, b pair) int {
		switch {
		case a.overlap > b.overlap:
			return -1
		case a.overlap < b.overlap:
			return 1
		}
		return 0
	})

	usedDet := make(map[int]bool, len(pairs))
	usedPerson := make(map[int]bool, len(persons))
	assigned := 0
	for _, p := range pairs {
		if usedDet[p.det] || usedPerson[p.person] {
			continue
		}
		usedDet[p.det] = true
		usedPerson[p.person] = true

		vec := make(domain.EquipmentVector, len(persons[p.person].Equipment))
		for k, v := range persons[p.person].Equipment {
			vec[k] = v
		}
		dets[p.det].Equipment = vec
		assigned++
	}

	return assigned
}

func needsDetection(dets []domain.Detection) bool {
	return slices.ContainsFunc(dets, func(d domain.Detection) bool {
		return d.Equipment == nil && d.BoundingBox != nil
	})
}
