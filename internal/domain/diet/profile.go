package diet

import (
	"fmt"
	"slices"
)

// UserProfile describes the person a weekly plan is generated for.
// It is treated as immutable for the lifetime of one generation run.
type UserProfile struct {
	PrimaryType   Constitution
	SecondaryType Constitution
	Gender        Gender
	Age           float64 // years
	Height        float64 // cm
	Weight        float64 // kg
	Activity      ActivityLevel
	Diseases      []Disease
	Cuisine       Cuisine
	Season        Season
}

// Validate checks the fields the metabolic calculation depends on.
// Unknown constitution, cuisine, season and disease values are accepted;
// the selector absorbs them through its fallbacks.
func (p UserProfile) Validate() error {
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be positive, got %v", ErrInvalidProfile, p.Age)
	}
	if p.Height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidProfile, p.Height)
	}
	if p.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrInvalidProfile, p.Weight)
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.Activity)
	}
	return nil
}

// HasDisease reports whether d is in the profile's disease set
func (p UserProfile) HasDisease(d Disease) bool {
	return slices.Contains(p.Diseases, d)
}

// WithDiseases returns a copy of the profile with the given disease set
func (p UserProfile) WithDiseases(diseases ...Disease) UserProfile {
	p.Diseases = slices.Clone(diseases)
	return p
}
