package port

import "time"

// Исходы загрузки страницы для метрик
const (
	FetchOutcomeSuccess = "success"
	FetchOutcomeError   = "error"
	FetchOutcomeStale   = "stale"
)

// MetricsPort - коллаборатор наблюдаемости
type MetricsPort interface {
	ObserveFetch(outcome string, duration time.Duration)
	ObserveCache(result string)
	ObserveSubscription(result string)
}

// NoopMetrics используется, когда метрики не нужны (например, в тестах)
type NoopMetrics struct{}

func (NoopMetrics) ObserveFetch(string, time.Duration) {}
func (NoopMetrics) ObserveCache(string)                {}
func (NoopMetrics) ObserveSubscription(string)         {}
