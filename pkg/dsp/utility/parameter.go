package utility

// ScaleParameter performs linear scaling of a normalized parameter value (0-1) to a target range.
func ScaleParameter(normalized, min, max float64) float64 {
	return min + normalized*(max-min)
}

// UnscaleParameter performs inverse linear scaling from a target range back to normalized (0-1).
func UnscaleParameter(value, min, max float64) float64 {
	if max == min {
		return 0.0
	}
	return (value - min) / (max - min)
}

// ClampParameter ensures a parameter value stays within the specified range.
func ClampParameter(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// PercentToAmount maps a 0-100 UI percentage onto [0, max], clamping out-of-range input.
func PercentToAmount(percent, max float64) float64 {
	return ScaleParameter(ClampParameter(percent, 0, 100)/100, 0, max)
}
