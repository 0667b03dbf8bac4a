package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/logx"
)

func testLogger() *logx.Logger {
	return logx.NewLogger("test")
}

func TestGeocodeParsesFirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), "India")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"display_name":"Nashik, Maharashtra, India","lat":"19.9975","lon":"73.7898","type":"city"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client(), testLogger())
	place, err := c.Geocode(context.Background(), "Nashik")
	require.NoError(t, err)

	assert.Equal(t, "Nashik, Maharashtra, India", place.DisplayName)
	assert.InDelta(t, 19.9975, place.Lat, 0.0001)
	assert.InDelta(t, 73.7898, place.Lon, 0.0001)
}

func TestGeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client(), testLogger())
	_, err := c.Geocode(context.Background(), "Nowhereville")
	assert.Error(t, err)
}

func TestReverseParsesPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Write([]byte(`{"display_name":"Nashik, Maharashtra, India","lat":"19.9975","lon":"73.7898","type":"city"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client(), testLogger())
	place, err := c.Reverse(context.Background(), 19.9975, 73.7898)
	require.NoError(t, err)
	assert.Equal(t, "Nashik, Maharashtra, India", place.DisplayName)
}

func TestNearbySurveysCompetition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		data := r.Form.Get("data")
		assert.Contains(t, data, "around:2000")
		assert.Contains(t, data, "restaurant")
		w.Write([]byte(`{"elements":[
			{"lat":19.9980,"lon":73.7900,"tags":{"name":"Hotel Swad","amenity":"restaurant"}},
			{"lat":20.0100,"lon":73.8000,"tags":{"amenity":"cafe"}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, srv.Client(), testLogger())
	survey, err := c.Nearby(context.Background(), 19.9975, 73.7898, "food", 0)
	require.NoError(t, err)

	assert.Equal(t, 2, survey.Count)
	assert.Equal(t, CompetitionLow, survey.Level)
	require.Len(t, survey.Amenities, 2)
	assert.Equal(t, "Hotel Swad", survey.Amenities[0].Name)
	assert.Equal(t, "Unnamed", survey.Amenities[1].Name)
	assert.Less(t, survey.Amenities[0].DistanceKM, survey.Amenities[1].DistanceKM)
}

func TestCompetitionThresholds(t *testing.T) {
	assert.Equal(t, CompetitionLow, Competition(0))
	assert.Equal(t, CompetitionLow, Competition(4))
	assert.Equal(t, CompetitionMedium, Competition(5))
	assert.Equal(t, CompetitionMedium, Competition(14))
	assert.Equal(t, CompetitionHigh, Competition(15))
}

func TestHaversineKnownDistance(t *testing.T) {
	// Mumbai to Pune is roughly 120 km as the crow flies.
	d := Haversine(19.0760, 72.8777, 18.5204, 73.8567)
	assert.InDelta(t, 120, d, 10)
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client(), testLogger())
	_, err := c.Geocode(context.Background(), "Nashik")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
