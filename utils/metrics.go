package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики расчетного движка
	TotalRecomputes     int64
	UnbalancedDetected  int64
	LastRecomputeTime   time.Time
	LastUnbalancedTime  time.Time

	// Метрики валидации
	ValidationFailures int64

	// Метрики уведомлений
	NotificationsSent   int64
	NotificationsFailed int64

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRecompute записывает пересчет расчетных полей отчета
func (m *Metrics) RecordRecompute() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRecomputes++
	m.LastRecomputeTime = time.Now()
}

// RecordUnbalanced записывает обнаружение расбалансированного баланса
func (m *Metrics) RecordUnbalanced() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UnbalancedDetected++
	m.LastUnbalancedTime = time.Now()
}

// RecordValidationFailure записывает отказ валидации
func (m *Metrics) RecordValidationFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ValidationFailures++
}

// RecordNotification записывает результат отправки уведомления
func (m *Metrics) RecordNotification(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.NotificationsFailed++
		m.recordErrorLocked(err)
		return
	}
	m.NotificationsSent++
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_recomputes":     m.TotalRecomputes,
		"unbalanced_detected":  m.UnbalancedDetected,
		"validation_failures":  m.ValidationFailures,
		"notifications_sent":   m.NotificationsSent,
		"notifications_failed": m.NotificationsFailed,
		"error_count":          m.ErrorCount,
		"last_error_time":      m.LastErrorTime,
		"error_types":          m.ErrorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRecomputes = 0
	m.UnbalancedDetected = 0
	m.ValidationFailures = 0
	m.NotificationsSent = 0
	m.NotificationsFailed = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
