package server

// Ingest payload schemas. Shapes follow the agents' wire format.

const sensorReadingSchema = `{
	"type": "object",
	"required": ["temperature", "humidity", "soil_moisture", "irrigation_status", "ai_decision"],
	"properties": {
		"temperature":       {"type": "number", "minimum": -50, "maximum": 80},
		"humidity":          {"type": "number", "minimum": 0, "maximum": 100},
		"soil_moisture":     {"type": "number", "minimum": 0, "maximum": 100},
		"irrigation_status": {"type": "boolean"},
		"ai_decision":       {"type": "string"}
	},
	"additionalProperties": false
}`

const pestReportSchema = `{
	"type": "object",
	"required": ["pest_name", "plant_name", "detection_certainty"],
	"properties": {
		"pest_name":           {"type": "string", "minLength": 1},
		"plant_name":          {"type": "string", "minLength": 1},
		"detection_certainty": {"type": "number", "minimum": 0, "maximum": 1},
		"recommendation":      {"type": "string"}
	},
	"additionalProperties": false
}`

const manualControlSchema = `{
	"type": "object",
	"required": ["manual_enabled", "pump_command"],
	"properties": {
		"manual_enabled": {"type": "boolean"},
		"pump_command":   {"type": "boolean"}
	},
	"additionalProperties": false
}`
