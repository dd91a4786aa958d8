package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"AstroCore/internal/domain/models"
	xhttp "AstroCore/pkg/http"
)

// HTTPEphemeris calls an external precise ephemeris service.
//
//	POST /positions {"jd", "body", "flags"}           -> PointPosition
//	POST /houses    {"jd", "lat", "lon", "hsys"}      -> HouseData
type HTTPEphemeris struct {
	client *xhttp.Client
}

// HTTPConfig configures HTTPEphemeris.
type HTTPConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
}

func NewHTTPEphemeris(cfg HTTPConfig, opts ...xhttp.ClientOption) (*HTTPEphemeris, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ephemeris: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	base := []xhttp.ClientOption{
		xhttp.WithBaseURL(cfg.BaseURL),
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithRetries(cfg.Attempts, cfg.Backoff),
	}
	return &HTTPEphemeris{client: xhttp.NewClient(append(base, opts...)...)}, nil
}

func (h *HTTPEphemeris) Name() string { return "http" }

func (h *HTTPEphemeris) Accuracy() models.Accuracy { return models.AccuracyPrecise }

type positionRequest struct {
	JD    float64 `json:"jd"`
	Body  int     `json:"body"`
	Flags int     `json:"flags"`
}

// Pointers detect fields the service left out.
type positionResponse struct {
	Longitude      *float64 `json:"longitude"`
	Latitude       *float64 `json:"latitude"`
	Distance       *float64 `json:"distance"`
	LongitudeSpeed *float64 `json:"longitude_speed"`
	LatitudeSpeed  float64  `json:"latitude_speed"`
	DistanceSpeed  float64  `json:"distance_speed"`
}

type housesRequest struct {
	JD   float64 `json:"jd"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	HSys string  `json:"hsys"`
}

type housesResponse struct {
	Cusps               []float64 `json:"cusps"`
	Ascendant           *float64  `json:"ascendant"`
	Midheaven           *float64  `json:"midheaven"`
	ARMC                float64   `json:"armc"`
	Vertex              float64   `json:"vertex"`
	EquatorialAscendant float64   `json:"equatorial_ascendant"`
}

func (h *HTTPEphemeris) PointPosition(ctx context.Context, jd float64, body models.Body, flags models.CalcFlag) (models.PointPosition, error) {
	var resp positionResponse
	err := h.client.PostJSON(ctx, "/positions", positionRequest{JD: jd, Body: body.ID(), Flags: int(flags)}, &resp)
	if err == nil {
		err = resp.validate()
	}
	if err != nil {
		return models.PointPosition{}, &models.EphemerisComputationError{Op: "position", Body: body.String(), Err: err}
	}
	return models.PointPosition{
		Longitude:      *resp.Longitude,
		Latitude:       *resp.Latitude,
		Distance:       *resp.Distance,
		LongitudeSpeed: *resp.LongitudeSpeed,
		LatitudeSpeed:  resp.LatitudeSpeed,
		DistanceSpeed:  resp.DistanceSpeed,
	}, nil
}

func (r *positionResponse) validate() error {
	if r.Longitude == nil || r.Latitude == nil || r.Distance == nil || r.LongitudeSpeed == nil {
		return errors.New("incomplete position in response")
	}
	if !finite(*r.Longitude, *r.Latitude, *r.Distance, *r.LongitudeSpeed) {
		return errors.New("non-finite position in response")
	}
	return nil
}

func (h *HTTPEphemeris) HousesAndAngles(ctx context.Context, jd, lat, lon float64, hs models.HouseSystem) (models.HouseData, error) {
	var resp housesResponse
	err := h.client.PostJSON(ctx, "/houses", housesRequest{JD: jd, Lat: lat, Lon: lon, HSys: hs.Code()}, &resp)
	if err == nil {
		err = resp.validate()
	}
	if err != nil {
		return models.HouseData{}, &models.EphemerisComputationError{Op: "houses", Err: err}
	}
	data := models.HouseData{
		Ascendant:           *resp.Ascendant,
		Midheaven:           *resp.Midheaven,
		ARMC:                resp.ARMC,
		Vertex:              resp.Vertex,
		EquatorialAscendant: resp.EquatorialAscendant,
	}
	copy(data.Cusps[:], resp.Cusps)
	return data, nil
}

func (r *housesResponse) validate() error {
	if len(r.Cusps) != 12 {
		return fmt.Errorf("expected 12 cusps, got %d", len(r.Cusps))
	}
	if r.Ascendant == nil || r.Midheaven == nil {
		return errors.New("missing angles in response")
	}
	if !finite(append([]float64{*r.Ascendant, *r.Midheaven}, r.Cusps...)...) {
		return errors.New("non-finite house data in response")
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
