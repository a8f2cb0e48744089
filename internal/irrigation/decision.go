package irrigation

import "fmt"

// Reason explains which rule produced an irrigation decision.
type Reason string

const (
	ReasonManual    Reason = "MANUAL"
	ReasonAI        Reason = "AI"
	ReasonEmergency Reason = "EMERGENCY"
	ReasonNone      Reason = "NO"
)

type Input struct {
	ManualEnabled bool
	PumpCommand   bool

	Probability  float64 // model output, 0 when no model is loaded
	Threshold    float64
	SoilMoisture float64 // percent
	EmergencyPct float64 // soil percent at or below which the pump is forced on
}

type Decision struct {
	On     bool
	Reason Reason
}

// Decide applies the decision rules: a manual override wins outright;
// otherwise the model fires at or above the threshold, and the emergency
// rule fires at or below the dryness floor.
func Decide(in Input) Decision {
	if in.ManualEnabled {
		return Decision{On: in.PumpCommand, Reason: ReasonManual}
	}

	ai := in.Probability >= in.Threshold
	emergency := in.SoilMoisture <= in.EmergencyPct

	switch {
	case ai:
		return Decision{On: true, Reason: ReasonAI}
	case emergency:
		return Decision{On: true, Reason: ReasonEmergency}
	default:
		return Decision{On: false, Reason: ReasonNone}
	}
}

// DecisionText renders the decision the way it is stored with sensor
// readings.
func DecisionText(d Decision) string {
	if d.On {
		return fmt.Sprintf("Irrigation required (Reason: %s)", d.Reason)
	}
	return "Irrigation not required"
}
