// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/shiliao/dietplan/internal/domain/diet"
)

// PlanService defines the diet planning use cases
type PlanService interface {
	GeneratePlan(ctx context.Context, cmd GeneratePlanCommand) (*PlanDTO, error)
	AssessProfile(ctx context.Context, cmd ProfileCommand) (*ProfileAssessmentDTO, error)
	ListConstitutions(ctx context.Context) ([]diet.ConstitutionProfile, error)
}

// ProfileCommand carries the user profile as submitted by a client
type ProfileCommand struct {
	PrimaryType   string   `json:"main_type" yaml:"main_type" validate:"required,max=32"`
	SecondaryType string   `json:"sub_type" yaml:"sub_type" validate:"max=32"`
	Gender        string   `json:"gender" yaml:"gender" validate:"required,oneof=男 女"`
	Age           float64  `json:"age" yaml:"age" validate:"gt=0,lte=150"`
	Height        float64  `json:"height" yaml:"height" validate:"gt=0,lte=300"`
	Weight        float64  `json:"weight" yaml:"weight" validate:"gt=0,lte=500"`
	Activity      string   `json:"activity" yaml:"activity" validate:"required,activity"`
	Diseases      []string `json:"diseases" yaml:"diseases" validate:"max=16,dive,max=32"`
	Cuisine       string   `json:"preferred_cuisine" yaml:"preferred_cuisine" validate:"max=32"`
	Season        string   `json:"season" yaml:"season" validate:"max=32"`
}

// ToProfile maps the command onto the domain profile
func (c ProfileCommand) ToProfile() diet.UserProfile {
	diseases := make([]diet.Disease, 0, len(c.Diseases))
	for _, d := range c.Diseases {
		diseases = append(diseases, diet.Disease(d))
	}
	return diet.UserProfile{
		PrimaryType:   diet.Constitution(c.PrimaryType),
		SecondaryType: diet.Constitution(c.SecondaryType),
		Gender:        diet.Gender(c.Gender),
		Age:           c.Age,
		Height:        c.Height,
		Weight:        c.Weight,
		Activity:      diet.ActivityLevel(c.Activity),
		Diseases:      diseases,
		Cuisine:       diet.Cuisine(c.Cuisine),
		Season:        diet.Season(c.Season),
	}
}

// GeneratePlanCommand requests a weekly plan. A nil Seed lets the service pick one.
type GeneratePlanCommand struct {
	Profile ProfileCommand `json:"profile" yaml:"profile"`
	Seed    *int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ProfileAssessmentDTO is the derived, read-only view of a profile
type ProfileAssessmentDTO struct {
	BMI           float64      `json:"bmi"`
	BMIBand       diet.BMIBand `json:"bmi_band"`
	CalorieTarget int          `json:"calorie_target"`
	Medicinals    []string     `json:"medicinals"`
	DietTip       string       `json:"diet_tip,omitempty"`

	// RecommendedMedicinals is the full pool the sample is drawn from
	RecommendedMedicinals []string `json:"recommended_medicinals"`
}

// PlanDTO is a generated weekly plan
type PlanDTO struct {
	ID         uuid.UUID            `json:"id"`
	Seed       int64                `json:"seed"`
	Assessment ProfileAssessmentDTO `json:"assessment"`
	Menu       diet.WeeklyMenu      `json:"menu"`
}
