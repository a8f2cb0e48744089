package irrigation

import "math"

// ADCToPercent converts a raw soil-probe ADC value to moisture percent
// using the wet/dry calibration points. Values beyond the calibration range
// clamp to 0/100. Result is rounded to one decimal.
func ADCToPercent(raw, wet, dry int) float64 {
	if dry <= wet {
		return 0
	}
	v := raw
	if v > dry {
		v = dry
	}
	if v < wet {
		v = wet
	}
	pct := 100.0 * float64(dry-v) / float64(dry-wet)
	return math.Round(pct*10) / 10
}

// VPD computes the vapor pressure deficit in kPa from air temperature (°C)
// and relative humidity (%), using the Tetens saturation formula.
func VPD(tempC, rh float64) float64 {
	es := 0.6108 * math.Exp((17.27*tempC)/(tempC+237.3))
	ea := es * (rh / 100.0)
	return es - ea
}
