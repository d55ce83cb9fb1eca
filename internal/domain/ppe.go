package domain

import (
	"slices"
	"strings"
)

// Equipment names a piece of personal protective equipment
type Equipment string

const (
	EquipmentHelmet  Equipment = "helmet"
	EquipmentVest    Equipment = "vest"
	EquipmentGloves  Equipment = "gloves"
	EquipmentMask    Equipment = "mask"
	EquipmentGlasses Equipment = "glasses"
)

// AllEquipment lists every supported item in canonical order
var AllEquipment = []Equipment{
	EquipmentGlasses,
	EquipmentGloves,
	EquipmentHelmet,
	EquipmentMask,
	EquipmentVest,
}

func (e Equipment) Valid() bool {
	return slices.Contains(AllEquipment, e)
}

// PPERequirement is the singleton site configuration of mandatory equipment.
// Updates replace it wholesale; there is no partial update.
type PPERequirement struct {
	Helmet  bool `json:"helmet"`
	Vest    bool `json:"vest"`
	Gloves  bool `json:"gloves"`
	Mask    bool `json:"mask"`
	Glasses bool `json:"glasses"`
}

// Required returns the required items in canonical order
func (r PPERequirement) Required() []Equipment {
	required := make([]Equipment, 0, len(AllEquipment))
	flags := map[Equipment]bool{
		EquipmentHelmet:  r.Helmet,
		EquipmentVest:    r.Vest,
		EquipmentGloves:  r.Gloves,
		EquipmentMask:    r.Mask,
		EquipmentGlasses: r.Glasses,
	}
	for _, e := range AllEquipment {
		if flags[e] {
			required = append(required, e)
		}
	}
	return required
}

// EquipmentVector is what a PPE detector observed on a tracked person.
// An absent key means the detector did not confirm the item.
type EquipmentVector map[Equipment]bool

// ViolationSet is a canonical (sorted, deduplicated) set of missing equipment
type ViolationSet []Equipment

// NewViolationSet builds a canonical set from arbitrary items
func NewViolationSet(items ...Equipment) ViolationSet {
	if len(items) == 0 {
		return nil
	}
	set := slices.Clone(items)
	slices.Sort(set)
	return ViolationSet(slices.Compact(set))
}

// ParseViolationSet parses the comma separated form produced by String
func ParseViolationSet(s string) ViolationSet {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]Equipment, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, Equipment(p))
		}
	}
	return NewViolationSet(items...)
}

func (v ViolationSet) Empty() bool {
	return len(v) == 0
}

// Equal compares set membership, not just cardinality
func (v ViolationSet) Equal(other ViolationSet) bool {
	return slices.Equal(v, other)
}

func (v ViolationSet) Contains(e Equipment) bool {
	_, found := slices.BinarySearch(v, e)
	return found
}

func (v ViolationSet) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = string(e)
	}
	return strings.Join(parts, ",")
}
