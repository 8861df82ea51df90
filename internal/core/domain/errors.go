package domain

import "errors"

var (
	ErrInvalidFilters        = errors.New("invalid search filters")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrSubscriptionsDisabled = errors.New("newsletter subscriptions are disabled")
	ErrUpstreamUnavailable   = errors.New("property listing service is unavailable")
	// ErrStaleResponse - ответ пришел на запрос, который уже вытеснен более новым
	ErrStaleResponse = errors.New("listing response superseded by a newer request")
)
