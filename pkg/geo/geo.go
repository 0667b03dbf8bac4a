// Package geo resolves place names and surveys nearby competition
// using the OpenStreetMap public APIs: Nominatim for geocoding and
// Overpass for amenity queries.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"advisor/pkg/logx"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultOverpassURL  = "https://overpass-api.de/api/interpreter"

	// Nominatim usage policy requires an identifying agent.
	userAgent = "startup-sathi-advisor/1.0"
)

// CompetitionLevel buckets a competitor count for a location.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "Low"
	CompetitionMedium CompetitionLevel = "Medium"
	CompetitionHigh   CompetitionLevel = "High"
)

// Competition buckets a nearby competitor count.
func Competition(count int) CompetitionLevel {
	switch {
	case count < 5:
		return CompetitionLow
	case count < 15:
		return CompetitionMedium
	default:
		return CompetitionHigh
	}
}

// Place is a resolved location.
type Place struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Type        string  `json:"type,omitempty"`
}

// Amenity is one nearby point of interest.
type Amenity struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKM float64 `json:"distance_km"`
}

// Survey is the competition picture around a point for a category.
type Survey struct {
	Category  string           `json:"category"`
	RadiusM   int              `json:"radius_m"`
	Count     int              `json:"count"`
	Level     CompetitionLevel `json:"level"`
	Amenities []Amenity        `json:"amenities"`
}

// categoryFilters maps business categories to Overpass tag filters.
// Unknown categories fall back to the general shop filter.
var categoryFilters = map[string][]string{
	"food":      {`node["amenity"~"restaurant|cafe|fast_food"]`, `node["shop"~"bakery|confectionery"]`},
	"textile":   {`node["shop"~"clothes|tailor|fabric"]`},
	"agriculture": {
		`node["shop"~"farm|dairy|greengrocer"]`,
	},
	"service":   {`node["shop"~"beauty|hairdresser"]`},
	"craft":     {`node["shop"~"craft|gift|art"]`},
	"education": {`node["amenity"~"school|college|training"]`},
	"commerce":  {`node["shop"~"convenience|supermarket|general"]`},
}

var generalFilter = []string{`node["shop"]`}

// Client talks to Nominatim and Overpass. A nil http.Client gets a
// sensible timeout.
type Client struct {
	nominatimURL string
	overpassURL  string
	httpClient   *http.Client
	log          *logx.Logger
}

func NewClient(nominatimURL, overpassURL string, httpClient *http.Client, log *logx.Logger) *Client {
	if nominatimURL == "" {
		nominatimURL = DefaultNominatimURL
	}
	if overpassURL == "" {
		overpassURL = DefaultOverpassURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		nominatimURL: strings.TrimRight(nominatimURL, "/"),
		overpassURL:  overpassURL,
		httpClient:   httpClient,
		log:          log.WithComponent("geo"),
	}
}

// nominatimResult carries coordinates as strings on the wire.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

func (r nominatimResult) place() (Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse longitude %q: %w", r.Lon, err)
	}
	return Place{DisplayName: r.DisplayName, Lat: lat, Lon: lon, Type: r.Type}, nil
}

// Geocode resolves a free-text place name. India is assumed when the
// query does not say otherwise, matching the advisory audience.
func (c *Client) Geocode(ctx context.Context, query string) (Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Place{}, fmt.Errorf("geocode: empty query")
	}
	if !strings.Contains(strings.ToLower(query), "india") {
		query += ", India"
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	var results []nominatimResult
	if err := c.get(ctx, c.nominatimURL+"/search?"+q.Encode(), &results); err != nil {
		return Place{}, err
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("geocode: no match for %q", query)
	}
	return results[0].place()
}

// Reverse resolves coordinates back to a place name.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var result nominatimResult
	if err := c.get(ctx, c.nominatimURL+"/reverse?"+q.Encode(), &result); err != nil {
		return Place{}, err
	}
	if result.DisplayName == "" {
		return Place{}, fmt.Errorf("reverse: no place at %f,%f", lat, lon)
	}
	return result.place()
}

// overpassResponse is the Overpass JSON envelope.
type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nearby surveys competitors of a category around a point. Results are
// sorted by distance.
func (c *Client) Nearby(ctx context.Context, lat, lon float64, category string, radiusM int) (Survey, error) {
	if radiusM <= 0 {
		radiusM = 2000
	}
	filters, ok := categoryFilters[strings.ToLower(category)]
	if !ok {
		filters = generalFilter
	}

	var q strings.Builder
	q.WriteString("[out:json][timeout:25];(")
	for _, f := range filters {
		fmt.Fprintf(&q, "%s(around:%d,%f,%f);", f, radiusM, lat, lon)
	}
	q.WriteString(");out body 50;")

	form := url.Values{}
	form.Set("data", q.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Survey{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	var parsed overpassResponse
	if err := c.do(req, &parsed); err != nil {
		return Survey{}, err
	}

	amenities := make([]Amenity, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		name := el.Tags["name"]
		if name == "" {
			name = "Unnamed"
		}
		kind := el.Tags["amenity"]
		if kind == "" {
			kind = el.Tags["shop"]
		}
		amenities = append(amenities, Amenity{
			Name:       name,
			Kind:       kind,
			Lat:        el.Lat,
			Lon:        el.Lon,
			DistanceKM: Haversine(lat, lon, el.Lat, el.Lon),
		})
	}
	sort.Slice(amenities, func(i, j int) bool {
		return amenities[i].DistanceKM < amenities[j].DistanceKM
	})

	return Survey{
		Category:  category,
		RadiusM:   radiusM,
		Count:     len(amenities),
		Level:     Competition(len(amenities)),
		Amenities: amenities,
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	return c.do(req, v)
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return fmt.Errorf("geo %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
