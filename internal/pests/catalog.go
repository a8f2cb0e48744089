package pests

// Entry maps a detection-model label to the farmer-facing pest name and the
// treatment recommendation attached to reports for that pest.
type Entry struct {
	PestName       string
	Recommendation string
}

const healthyLabel = "Tomato___healthy"

var catalog = map[string]Entry{
	"Tomato___Bacterial_spot": {
		PestName:       "Bacterial Spot",
		Recommendation: "Use copper-based biopesticides, avoid overhead irrigation, and remove infected leaves to limit spread.",
	},
	"Tomato___Late_blight": {
		PestName:       "Late Blight",
		Recommendation: "Immediately spray systemic fungicides, ensure good plant ventilation, and monitor humidity levels.",
	},
	"Tomato___White_rot": {
		PestName:       "White Rot",
		Recommendation: "Completely remove infected plants. Use soil fungicides, and ensure pruning tools are sterilized.",
	},
	healthyLabel: {
		PestName:       "Healthy",
		Recommendation: "The plant is healthy. Continue monitoring and irrigation as needed.",
	},
}

// Lookup resolves a model label. Unknown labels fall back to the healthy
// entry, mirroring the detection pipeline's behavior.
func Lookup(label string) Entry {
	if e, ok := catalog[label]; ok {
		return e
	}
	return catalog[healthyLabel]
}

// RecommendationFor returns the stock recommendation for a pest name as
// reported by agents (which send the display name, not the model label).
func RecommendationFor(pestName string) (string, bool) {
	for _, e := range catalog {
		if e.PestName == pestName {
			return e.Recommendation, true
		}
	}
	return "", false
}

// IsHealthy reports whether a label represents a healthy detection; healthy
// detections produce no pest report.
func IsHealthy(label string) bool {
	return label == healthyLabel
}
