package models

// PointPosition is the raw adapter output for one body at one instant.
// Speeds are per day.
type PointPosition struct {
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Distance       float64 `json:"distance"`
	LongitudeSpeed float64 `json:"longitude_speed"`
	LatitudeSpeed  float64 `json:"latitude_speed"`
	DistanceSpeed  float64 `json:"distance_speed"`
}

// HouseData is the adapter output for house cusps and chart angles.
type HouseData struct {
	Cusps               [12]float64 `json:"cusps"`
	Ascendant           float64     `json:"ascendant"`
	Midheaven           float64     `json:"midheaven"`
	ARMC                float64     `json:"armc"`
	Vertex              float64     `json:"vertex"`
	EquatorialAscendant float64     `json:"equatorial_ascendant"`
}

// Accuracy labels where chart positions came from.
type Accuracy string

const (
	AccuracyPrecise     Accuracy = "precise"
	AccuracyApproximate Accuracy = "approximate"
)
