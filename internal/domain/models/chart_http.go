package models

// Requests for chart HTTP endpoints. Defined in domain for reuse by the API and CLI.

type BirthDataRequest struct {
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string   `json:"time" validate:"omitempty,max=8"`
	TimeUnknown bool     `json:"time_unknown"`
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Timezone    string   `json:"timezone" validate:"required"`
}

func (r BirthDataRequest) ToBirthData() BirthData {
	b := BirthData{
		Date:        r.Date,
		Time:        r.Time,
		TimeUnknown: r.TimeUnknown,
		Timezone:    r.Timezone,
	}
	if r.Latitude != nil {
		b.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		b.Longitude = *r.Longitude
	}
	return b
}

type NatalChartRequest struct {
	BirthDataRequest
	HouseSystem string `json:"house_system"` // empty means the server default
	Aspects     *bool  `json:"aspects" default:"true"`
}

type TransitChartRequest struct {
	At          string            `json:"at"` // RFC3339 or unix seconds, empty means now
	Natal       *BirthDataRequest `json:"natal"`
	HouseSystem string            `json:"house_system"`
	Aspects     *bool             `json:"aspects" default:"true"`
}

type CompositeChartRequest struct {
	PersonA     BirthDataRequest `json:"person_a"`
	PersonB     BirthDataRequest `json:"person_b"`
	HouseSystem string           `json:"house_system"`
	Aspects     *bool            `json:"aspects" default:"true"`
}

// BoolValue dereferences an optional flag.
func BoolValue(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// ArchiveQueryRequest selects archived chart rows. From and To are RFC3339 or
// unix seconds; the window defaults to the last 24 hours.
type ArchiveQueryRequest struct {
	Kind  string `query:"kind" json:"kind" validate:"required,oneof=natal transit composite"`
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=5000"`
}
