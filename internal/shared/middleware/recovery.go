package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"coursehub-backend/internal/shared"
	"coursehub-backend/internal/shared/response"
	"coursehub-backend/internal/shared/result"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(shared.ContextRequestID)).
					Str("path", c.Request.URL.Path).
					Interface("error", err).
					Msg("Panic recovered")

				response.ErrorResponse(c, http.StatusInternalServerError,
					result.CodeInternal, "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
