package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/service"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors onto HTTP statuses. Bad parameters are the
// caller's fault (400), too little sales history is a data problem the caller
// can fix by waiting (422), and anything else is ours (500).
func respondError(c *gin.Context, err error) {
	var (
		invalidParam *domain.InvalidParameterError
		dataErr      *domain.DataError
		insufficient *domain.InsufficientDataError
		forecastErr  *domain.ForecastError
	)

	switch {
	case errors.Is(err, service.ErrMedicineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalidParam):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &dataErr), errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &forecastErr):
		log.Error().Err(err).Msg("model fit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
