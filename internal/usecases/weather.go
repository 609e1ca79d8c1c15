package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/practice-sem-2/messaging-service/internal/weather"
	"github.com/redis/go-redis/v9"
)

// WeatherQuery is a validated location request: either a zip code or a
// coordinate pair.
type WeatherQuery struct {
	Zip string
	Lat float64
	Lon float64
}

// WeatherCache holds provider payloads in front of the upstream API.
// *redis.Client satisfies it.
type WeatherCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type WeatherUsecase struct {
	resolver weather.Resolver
	provider weather.Provider
	cache    WeatherCache
	cacheTTL time.Duration
}

// NewWeatherUsecase builds the weather proxy pipeline. The cache may be nil,
// in that case every request goes to the provider.
func NewWeatherUsecase(resolver weather.Resolver, provider weather.Provider, cache WeatherCache, cacheTTL time.Duration) *WeatherUsecase {
	return &WeatherUsecase{
		resolver: resolver,
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Forecast resolves the query to a place, fetches the provider payload,
// rewrites its epoch timestamps into local wall-clock strings, and stamps
// the resolved city, state, and country onto the payload.
func (u *WeatherUsecase) Forecast(ctx context.Context, q WeatherQuery) (map[string]interface{}, error) {
	var (
		place weather.Place
		err   error
	)

	if q.Zip != "" {
		place, err = u.resolver.ByZip(q.Zip)
	} else {
		place, err = u.resolver.ByCoords(q.Lat, q.Lon)
	}
	if err != nil {
		return nil, err
	}

	payload, err := u.fetch(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return nil, err
	}

	weather.LocalizeTimestamps(payload)
	payload["City"] = place.City
	payload["State"] = place.State
	payload["Country"] = place.Country

	return payload, nil
}

func (u *WeatherUsecase) fetch(ctx context.Context, lat, lon float64) (map[string]interface{}, error) {
	key := fmt.Sprintf("weather:%.4f:%.4f", lat, lon)

	if u.cache != nil {
		if raw, err := u.cache.Get(ctx, key).Bytes(); err == nil {
			payload := map[string]interface{}{}
			if json.Unmarshal(raw, &payload) == nil {
				return payload, nil
			}
		}
	}

	payload, err := u.provider.OneCall(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		if raw, err := json.Marshal(payload); err == nil {
			u.cache.Set(ctx, key, raw, u.cacheTTL)
		}
	}

	return payload, nil
}
