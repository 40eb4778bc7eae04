package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trabahoph/payments-backend/internal/logger"
	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно: доменные ошибки
// получают свой HTTP статус из apperror, внутренние маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("ошибка обработки запроса")
			}

			statusCode := http.StatusInternalServerError
			message := "внутренняя ошибка сервера"

			var appErr *apperror.AppError
			if errors.As(err.Err, &appErr) {
				statusCode = appErr.HTTPStatus
				message = appErr.Message
			}

			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}
