package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-history/internal/common"
	"github.com/i474232898/weather-history/internal/weather"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json?"

// geocoder.ApiKey and geocoder.ApiUrl are package globals.
var googleMu sync.Mutex

// GoogleGeocoder resolves city names through the Google Maps geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	timeout time.Duration
	circuit *gobreaker.CircuitBreaker
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder creates a geocoder calling endpoint, or Google's when empty. endpoint is
// used as a prefix and must end in "?". A zero timeout leaves lookups bounded only by the
// caller's context.
func NewGoogleGeocoder(apiKey, endpoint string, timeout time.Duration, breakerThreshold uint32) *GoogleGeocoder {
	if endpoint == "" {
		endpoint = googleGeocodeURL
	}
	return &GoogleGeocoder{
		apiKey:  apiKey,
		timeout: timeout,
		circuit: newBreaker("google-geocode", breakerThreshold),
		lookup:  googleLookup(apiKey, endpoint),
	}
}

func googleLookup(apiKey, endpoint string) func(geocoder.Address) (geocoder.Location, error) {
	return func(addr geocoder.Address) (geocoder.Location, error) {
		googleMu.Lock()
		defer googleMu.Unlock()
		geocoder.ApiKey = apiKey
		geocoder.ApiUrl = endpoint
		return geocoder.Geocoding(addr)
	}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

// Geocode looks city up and rounds the result to two decimals. The library call does not
// take a context, so a cancelled ctx abandons the lookup rather than aborting it.
func (g *GoogleGeocoder) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	const op = "geocode"
	if g.apiKey == "" {
		return weather.Coordinates{}, weather.NewError(weather.KindRequest, op, errors.New("google api key is not configured"))
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := g.circuit.Execute(func() (interface{}, error) {
			return g.resolve(op, city)
		})
		loc, _ := out.(geocoder.Location)
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, classify(op, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return weather.Coordinates{}, classify(op, r.err)
		}
		return weather.NewCoordinates(r.loc.Latitude, r.loc.Longitude), nil
	}
}

// resolve runs one library lookup and maps its outcome onto the weather error kinds.
func (g *GoogleGeocoder) resolve(op, city string) (loc geocoder.Location, err error) {
	defer func() {
		// the library indexes the first result even for statuses it does not recognize
		if p := recover(); p != nil {
			loc = geocoder.Location{}
			err = weather.NewError(weather.KindRequest, op, fmt.Errorf("geocoder panic: %v", p))
		}
	}()

	loc, err = g.lookup(geocoder.Address{City: city})
	if err != nil {
		return geocoder.Location{}, googleError(op, city, err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return geocoder.Location{}, weather.NewError(weather.KindCityNotFound, op, fmt.Errorf("no match for %q", city))
	}
	return loc, nil
}

func googleError(op, city string, err error) error {
	// "No results found." is what the library returns for ZERO_RESULTS
	if common.ContainsAnyFold(err.Error(), "no results found", "ZERO_RESULTS") {
		return weather.NewError(weather.KindCityNotFound, op, fmt.Errorf("no match for %q: %w", city, err))
	}
	return classify(op, err)
}
