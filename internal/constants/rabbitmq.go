package constants

// Исходящие события сервиса
const (
	ListingExchange = "listing_exchange"

	SubscriberRegisteredRoutingKey = "subscriber.registered"
	ListingSearchRoutingKey        = "listing.search"
)

// Входящие события сервиса данных
const (
	PropertyExchange = "property_exchange"

	PropertyChangedRoutingKey = "property.changed"
	CacheInvalidationQueue    = "listing_web_cache_invalidation"
)
