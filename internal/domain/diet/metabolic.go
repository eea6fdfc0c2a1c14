package diet

import (
	"fmt"
	"math"
)

// activityMultipliers is the single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	ActivityLow:    1.20,
	ActivityMedium: 1.55,
	ActivityHigh:   1.90,
}

// ActivityMultiplier returns the multiplier for level and whether it is known
func ActivityMultiplier(level ActivityLevel) (float64, bool) {
	m, ok := activityMultipliers[level]
	return m, ok
}

// BMI returns weight / (height/100)^2
func BMI(p UserProfile) float64 {
	meters := p.Height / 100
	return p.Weight / (meters * meters)
}

// BMR is the Harris-Benedict basal metabolic rate. Any gender other than male
// uses the female coefficients.
func BMR(p UserProfile) float64 {
	if p.Gender == GenderMale {
		return 88.362 + 13.397*p.Weight + 4.799*p.Height - 5.677*p.Age
	}
	return 447.593 + 9.247*p.Weight + 3.098*p.Height - 4.330*p.Age
}

// BMIAdjustment scales the calorie target towards a healthy weight
func BMIAdjustment(bmi float64) float64 {
	switch {
	case bmi > 28:
		return 0.80
	case bmi > 24:
		return 0.85
	case bmi < 18.5:
		return 1.10
	default:
		return 1.00
	}
}

// ClassifyBMI maps a BMI value to its band
func ClassifyBMI(bmi float64) BMIBand {
	switch {
	case bmi < 18.5:
		return BMIBandUnderweight
	case bmi < 24:
		return BMIBandNormal
	case bmi < 28:
		return BMIBandOverweight
	default:
		return BMIBandObese
	}
}

// CalorieTarget returns round(bmr × activity × bmi adjustment) in kcal.
func CalorieTarget(p UserProfile) (int, error) {
	multiplier, ok := activityMultipliers[p.Activity]
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.Activity)
	}

	target := math.Round(BMR(p) * multiplier * BMIAdjustment(BMI(p)))
	if target < 0 {
		return 0, nil
	}
	return int(target), nil
}
