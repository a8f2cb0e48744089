package models

// WeeklyStatistics aggregates one calendar week (Monday start) of sensor
// readings and pest reports. Averages are rounded to 2 decimals.
type WeeklyStatistics struct {
	WeekStart        string  `json:"week_start"` // YYYY-MM-DD
	WeekEnd          string  `json:"week_end"`
	AvgTemperature   float64 `json:"avg_temperature"`
	AvgHumidity      float64 `json:"avg_humidity"`
	AvgSoilMoisture  float64 `json:"avg_soil_moisture"`
	TotalPestReports int     `json:"total_pest_reports"`
}
