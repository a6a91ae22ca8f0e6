package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики операций журнала
	LedgerOperations map[string]int64
	PendingDeposits  int64
	PendingWithdraws int64
	LastLedgerOp     time.Time

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
			LedgerOperations: make(map[string]int64),
			ErrorTypes:       make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики HTTP запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()
	if failed {
		m.FailedRequests++
	}
}

// RecordLedgerOperation записывает метрики операции журнала
func (m *Metrics) RecordLedgerOperation(opType string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastLedgerOp = time.Now()
	m.LedgerOperations[opType]++

	switch opType {
	case "deposit":
		m.PendingDeposits++
	case "withdrawal":
		m.PendingWithdraws++
	}

	if err != nil {
		m.recordErrorLocked(err)
	}
}

// RecordCompletedOperation записывает операцию, созданную сразу
// в терминальном статусе: счетчики pending она не затрагивает
func (m *Metrics) RecordCompletedOperation(opType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastLedgerOp = time.Now()
	m.LedgerOperations[opType]++
}

// RecordStatusTransition записывает переход статуса операции из pending
func (m *Metrics) RecordStatusTransition(opType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch opType {
	case "deposit":
		if m.PendingDeposits > 0 {
			m.PendingDeposits--
		}
	case "withdrawal":
		if m.PendingWithdraws > 0 {
			m.PendingWithdraws--
		}
	}
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

	ops := make(map[string]int64, len(m.LedgerOperations))
	for k, v := range m.LedgerOperations {
		ops[k] = v
	}

	return map[string]interface{}{
		"total_requests":    m.TotalRequests,
		"failed_requests":   m.FailedRequests,
		"average_latency":   m.AverageLatency.String(),
		"ledger_operations": ops,
		"pending_deposits":  m.PendingDeposits,
		"pending_withdraws": m.PendingWithdraws,
		"error_count":       m.ErrorCount,
		"last_error_time":   m.LastErrorTime,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.LedgerOperations = make(map[string]int64)
	m.PendingDeposits = 0
	m.PendingWithdraws = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
