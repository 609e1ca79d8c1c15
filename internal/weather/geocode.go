package weather

import (
	"errors"

	"github.com/kelvins/geocoder"
)

var ErrPlaceNotFound = errors.New("no place found for the given location")

// Place is a resolved geographic location.
type Place struct {
	City      string
	State     string
	Country   string
	Latitude  float64
	Longitude float64
}

// Resolver translates zip codes and coordinates into places.
type Resolver interface {
	ByZip(zip string) (Place, error)
	ByCoords(lat, lon float64) (Place, error)
}

// GoogleResolver resolves locations through the Google Geocoding API.
type GoogleResolver struct{}

func NewGoogleResolver(apiKey string) *GoogleResolver {
	geocoder.ApiKey = apiKey
	return &GoogleResolver{}
}

func (g *GoogleResolver) ByZip(zip string) (Place, error) {
	location, err := geocoder.Geocoding(geocoder.Address{
		PostalCode: zip,
		Country:    "United States",
	})
	if err != nil {
		return Place{}, err
	}
	return g.ByCoords(location.Latitude, location.Longitude)
}

func (g *GoogleResolver) ByCoords(lat, lon float64) (Place, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return Place{}, err
	}
	if len(addresses) == 0 {
		return Place{}, ErrPlaceNotFound
	}

	address := addresses[0]
	return Place{
		City:      address.City,
		State:     address.State,
		Country:   address.Country,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
