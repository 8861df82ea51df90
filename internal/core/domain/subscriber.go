package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber - подписчик рассылки с лендинга
type Subscriber struct {
	ID        uuid.UUID
	Email     string
	Source    string // с какой страницы пришла подписка
	CreatedAt time.Time
}
