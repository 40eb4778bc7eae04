// Package handlers содержит HTTP обработчики сервиса платежей.
package handlers

import (
	"time"

	"github.com/google/uuid"
)

// timeNow вынесен в переменную, чтобы тесты могли фиксировать время.
var timeNow = time.Now

// parseUUIDField разбирает UUID из тела запроса.
func parseUUIDField(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
