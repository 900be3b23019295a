package status

import "math"

// BMIBand is the adult BMI classification.
type BMIBand string

const (
	Underweight BMIBand = "underweight"
	Normal      BMIBand = "normal"
	Overweight  BMIBand = "overweight"
	Obese       BMIBand = "obese"
)

// BMIResult is a computed body-mass index.
type BMIResult struct {
	Value    float64 `json:"nilai"`
	Band     BMIBand `json:"band"`
	Kategori string  `json:"kategori"`
}

// BMI computes weightKg / heightM² for an adult. The value is rounded to one
// decimal; the band is decided on the unrounded value. Non-positive or
// non-finite input, or a result that is not finite, reports false and no
// result.
func BMI(weightKg, heightCm float64) (BMIResult, bool) {
	if !positive(weightKg) || !positive(heightCm) {
		return BMIResult{}, false
	}
	m := heightCm / 100
	v := weightKg / (m * m)
	if !positive(v) {
		return BMIResult{}, false
	}
	r := BMIResult{Value: math.Round(v*10) / 10}
	switch {
	case v < 18.5:
		r.Band, r.Kategori = Underweight, "Berat badan kurang"
	case v < 25:
		r.Band, r.Kategori = Normal, "Berat badan normal"
	case v < 30:
		r.Band, r.Kategori = Overweight, "Berat badan berlebih"
	default:
		r.Band, r.Kategori = Obese, "Obesitas"
	}
	return r, true
}

func positive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}
