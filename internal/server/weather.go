package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	usecase "github.com/practice-sem-2/messaging-service/internal/usecases"
)

// getWeather proxies the forecast request. Every validation branch is
// terminal: exactly one response is written per request.
func (s *Server) getWeather(c *gin.Context) {
	zip := c.Query("zip")
	latRaw := c.Query("lat")
	lonRaw := c.Query("long")

	var query usecase.WeatherQuery

	if zip == "" {
		if latRaw == "" && lonRaw == "" {
			respondMessage(c, http.StatusBadRequest, "Missing required information")
			return
		}

		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			respondMessage(c, http.StatusBadRequest, "Malformed parameter. Latitude and Longitude must be a number")
			return
		}
		query.Lat = lat
		query.Lon = lon
	} else {
		if _, err := strconv.Atoi(zip); err != nil {
			respondMessage(c, http.StatusBadRequest, "Malformed parameter. Zip code must be a number")
			return
		}
		query.Zip = zip
	}

	payload, err := s.weather.Forecast(c.Request.Context(), query)
	if err != nil {
		s.logger.WithError(err).Error("weather provider request failed")
		respondMessage(c, http.StatusBadGateway, "weather provider unavailable")
		return
	}

	c.JSON(http.StatusOK, payload)
}
