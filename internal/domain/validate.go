package domain

// Validate checks a single submission's four values against the fixed safe
// ranges and returns one human-readable warning per out-of-range parameter,
// in pH, turbidity, dissolved oxygen, nitrate order. An empty slice means
// every value is in range. Warnings are advisory: whether an out-of-range
// reading is still stored is the caller's policy decision.
func Validate(ph, turbidity, dissolvedOxygen, nitrate float64) []string {
	warnings := []string{}
	if sr, _ := RangeFor(ParamPH); !sr.Contains(ph) {
		warnings = append(warnings, "pH level is outside the typical safe range (6.5 - 8.5).")
	}
	if sr, _ := RangeFor(ParamTurbidity); !sr.Contains(turbidity) {
		warnings = append(warnings, "Turbidity is outside the typical safe range (0 - 5 NTU).")
	}
	if sr, _ := RangeFor(ParamDissolvedOxygen); !sr.Contains(dissolvedOxygen) {
		warnings = append(warnings, "Dissolved Oxygen is outside the typical safe range (5 - 14 mg/L).")
	}
	if sr, _ := RangeFor(ParamNitrate); !sr.Contains(nitrate) {
		warnings = append(warnings, "Nitrate level is outside the safe range (0 - 10 mg/L).")
	}
	return warnings
}

// ValidateReading is a convenience wrapper over Validate for a stored row.
func ValidateReading(r Reading) []string {
	return Validate(r.PH, r.Turbidity, r.DissolvedOxygen, r.Nitrate)
}
