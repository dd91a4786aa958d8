package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
)

type natalFunc func(context.Context, models.NatalRequest) (*models.NatalChart, error)

func (f natalFunc) Compute(ctx context.Context, req models.NatalRequest) (*models.NatalChart, error) {
	return f(ctx, req)
}

type transitFunc func(context.Context, models.TransitRequest) (*models.TransitChart, error)

func (f transitFunc) Compute(ctx context.Context, req models.TransitRequest) (*models.TransitChart, error) {
	return f(ctx, req)
}

type compositeFunc func(context.Context, models.CompositeRequest) (*models.CompositeChart, error)

func (f compositeFunc) Compute(ctx context.Context, req models.CompositeRequest) (*models.CompositeChart, error) {
	return f(ctx, req)
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type errorItem struct {
	Code  string `json:"code"`
	Field string `json:"field"`
}

func serve(t *testing.T, h *ChartsEchoHandler, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func firstError(t *testing.T, env envelope) errorItem {
	t.Helper()
	var items []errorItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.NotEmpty(t, items)
	return items[0]
}

const nyBirth = `"date":"1990-06-15","time":"14:30","latitude":40.7128,"longitude":-74.006,"timezone":"America/New_York"`

func TestNatalDefaultsAndSuccess(t *testing.T) {
	var got models.NatalRequest
	h := NewChartsEchoHandler(nil, natalFunc(func(_ context.Context, req models.NatalRequest) (*models.NatalChart, error) {
		got = req
		return &models.NatalChart{HouseSystem: req.HouseSystem, Points: []models.FormattedPoint{{Name: "Sun"}}}, nil
	}), nil, nil)

	rec, env := serve(t, h, "/api/charts/natal", "{"+nyBirth+"}")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, models.WholeSign, got.HouseSystem)
	assert.True(t, got.WithAspects)
	assert.Equal(t, "America/New_York", got.Birth.Timezone)
	assert.InDelta(t, 40.7128, got.Birth.Latitude, 1e-9)

	var chart models.NatalChart
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, "Sun", chart.Points[0].Name)
}

func TestNatalAspectsCanBeDisabled(t *testing.T) {
	var got models.NatalRequest
	h := NewChartsEchoHandler(nil, natalFunc(func(_ context.Context, req models.NatalRequest) (*models.NatalChart, error) {
		got = req
		return &models.NatalChart{}, nil
	}), nil, nil)

	rec, _ := serve(t, h, "/api/charts/natal", "{"+nyBirth+`,"aspects":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.WithAspects)
}

func TestNatalValidation(t *testing.T) {
	h := NewChartsEchoHandler(nil, natalFunc(func(context.Context, models.NatalRequest) (*models.NatalChart, error) {
		t.Fatal("calculator must not run on invalid input")
		return nil, nil
	}), nil, nil)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing latitude", `{"date":"1990-06-15","longitude":1,"timezone":"UTC"}`, "latitude"},
		{"latitude out of range", `{"date":"1990-06-15","latitude":91,"longitude":1,"timezone":"UTC"}`, "latitude"},
		{"bad date layout", `{"date":"15/06/1990","latitude":1,"longitude":1,"timezone":"UTC"}`, "date"},
		{"missing timezone", `{"date":"1990-06-15","latitude":1,"longitude":1}`, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(t, h, "/api/charts/natal", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, firstError(t, env).Field)
		})
	}
}

func TestNatalUnknownHouseSystem(t *testing.T) {
	h := NewChartsEchoHandler(nil, nil, nil, nil)
	rec, env := serve(t, h, "/api/charts/natal", "{"+nyBirth+`,"house_system":"Z"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "house_system", firstError(t, env).Field)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			"time conversion",
			&models.ChartCalculationError{Kind: models.KindNatal, Err: &models.TimeConversionError{Field: "timezone", Value: "Mars/Olympus"}},
			http.StatusBadRequest, models.CodeTimeConversion,
		},
		{
			"unsupported house system",
			&models.ChartCalculationError{Kind: models.KindNatal, Err: &models.UnsupportedHouseSystemError{System: models.Placidus, Op: "natal chart"}},
			http.StatusUnprocessableEntity, models.CodeUnsupportedHouseSys,
		},
		{
			"timeout",
			&models.ChartCalculationError{Kind: models.KindNatal, Err: &models.EphemerisComputationError{Op: "position", Body: "Sun", Err: context.DeadlineExceeded}},
			http.StatusGatewayTimeout, "ERR_TIMEOUT",
		},
		{
			"ephemeris failure",
			&models.ChartCalculationError{Kind: models.KindNatal, Err: &models.EphemerisComputationError{Op: "houses", Err: errors.New("boom")}},
			http.StatusBadGateway, models.CodeEphemeris,
		},
		{"anything else", errors.New("unexpected"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChartsEchoHandler(nil, natalFunc(func(context.Context, models.NatalRequest) (*models.NatalChart, error) {
				return nil, tt.err
			}), nil, nil)
			rec, env := serve(t, h, "/api/charts/natal", "{"+nyBirth+"}")
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, firstError(t, env).Code)
		})
	}
}

func TestTransitsParsesInstantAndNatal(t *testing.T) {
	natal := &models.NatalChart{Points: []models.FormattedPoint{{Name: "Sun", Longitude: 84}}}
	var natalReq models.NatalRequest
	var got models.TransitRequest
	h := NewChartsEchoHandler(nil,
		natalFunc(func(_ context.Context, req models.NatalRequest) (*models.NatalChart, error) {
			natalReq = req
			return natal, nil
		}),
		transitFunc(func(_ context.Context, req models.TransitRequest) (*models.TransitChart, error) {
			got = req
			return &models.TransitChart{CalculatedAt: req.At}, nil
		}),
		nil,
	)

	body := `{"at":"2024-03-01T10:15:00Z","natal":{` + nyBirth + `}}`
	rec, _ := serve(t, h, "/api/charts/transits", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), got.At.UTC())
	assert.Same(t, natal, got.Natal)
	assert.True(t, got.WithAspects)
	assert.False(t, natalReq.WithAspects)
	assert.Equal(t, "private, max-age=60", rec.Header().Get(echo.HeaderCacheControl))
}

func TestTransitsWithoutNatalAndUnixTime(t *testing.T) {
	var got models.TransitRequest
	h := NewChartsEchoHandler(nil, nil,
		transitFunc(func(_ context.Context, req models.TransitRequest) (*models.TransitChart, error) {
			got = req
			return &models.TransitChart{}, nil
		}),
		nil,
	)

	rec, _ := serve(t, h, "/api/charts/transits", fmt.Sprintf(`{"at":"%d"}`, int64(1700000000)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got.Natal)
	assert.Equal(t, int64(1700000000), got.At.Unix())
}

func TestTransitsRejectsBadInstant(t *testing.T) {
	h := NewChartsEchoHandler(nil, nil, nil, nil)
	rec, env := serve(t, h, "/api/charts/transits", `{"at":"yesterday"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "at", firstError(t, env).Field)
}

func TestTransitsValidatesNestedNatal(t *testing.T) {
	h := NewChartsEchoHandler(nil, nil, nil, nil)
	rec, env := serve(t, h, "/api/charts/transits", `{"natal":{"date":"1990-06-15","longitude":1,"timezone":"UTC"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "natal.latitude", firstError(t, env).Field)
}

func TestComposite(t *testing.T) {
	var got models.CompositeRequest
	h := NewChartsEchoHandler(nil, nil, nil,
		compositeFunc(func(_ context.Context, req models.CompositeRequest) (*models.CompositeChart, error) {
			got = req
			return &models.CompositeChart{HouseSystem: req.HouseSystem}, nil
		}),
	)

	body := `{"person_a":{` + nyBirth + `},"person_b":{"date":"1992-01-02","time_unknown":true,"latitude":51.5,"longitude":-0.12,"timezone":"Europe/London"},"aspects":false}`
	rec, _ := serve(t, h, "/api/charts/composite", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1990-06-15", got.A.Date)
	assert.True(t, got.B.TimeUnknown)
	assert.False(t, got.WithAspects)
	assert.Equal(t, models.WholeSign, got.HouseSystem)
}

func TestCompositeValidatesBothPeople(t *testing.T) {
	h := NewChartsEchoHandler(nil, nil, nil, nil)
	body := `{"person_a":{` + nyBirth + `},"person_b":{"date":"1992-01-02","latitude":51.5,"longitude":-0.12}}`
	rec, env := serve(t, h, "/api/charts/composite", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "person_b.timezone", firstError(t, env).Field)
}

func TestConfiguredDefaultHouseSystem(t *testing.T) {
	var got models.NatalRequest
	h := NewChartsEchoHandler(nil, natalFunc(func(_ context.Context, req models.NatalRequest) (*models.NatalChart, error) {
		got = req
		return &models.NatalChart{}, nil
	}), nil, nil, WithDefaultHouseSystem(models.Equal))

	rec, _ := serve(t, h, "/api/charts/natal", "{"+nyBirth+"}")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Equal, got.HouseSystem)

	rec, _ = serve(t, h, "/api/charts/natal", "{"+nyBirth+`,"house_system":"whole_sign"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.WholeSign, got.HouseSystem)
}
