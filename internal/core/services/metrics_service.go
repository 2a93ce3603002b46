package services

import (
	"sync"

	"github.com/hansubae/Ghighlights/internal/core/domain"
)

// MetricsService keeps in-process counters for the realtime and view
// subsystems. The Prometheus collector samples these periodically.
type MetricsService struct {
	mu sync.RWMutex

	viewersConnected int64
	eventsBroadcast  int64
	sendFailures     int64

	viewsAccepted  map[domain.ClipID]int64
	viewsDuplicate map[domain.ClipID]int64
	viewsFailed    int64
}

func NewMetricsService() *MetricsService {
	return &MetricsService{
		viewsAccepted:  make(map[domain.ClipID]int64),
		viewsDuplicate: make(map[domain.ClipID]int64),
	}
}

func (m *MetricsService) RecordViewerConnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewersConnected++
}

func (m *MetricsService) RecordViewerDisconnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.viewersConnected > 0 {
		m.viewersConnected--
	}
}

func (m *MetricsService) RecordBroadcast(receivers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsBroadcast++
}

func (m *MetricsService) RecordSendFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFailures++
}

func (m *MetricsService) RecordViewAccepted(clipID domain.ClipID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewsAccepted[clipID]++
}

func (m *MetricsService) RecordViewDuplicate(clipID domain.ClipID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewsDuplicate[clipID]++
}

func (m *MetricsService) RecordViewFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewsFailed++
}

func (m *MetricsService) ViewersConnected() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewersConnected
}

func (m *MetricsService) EventsBroadcast() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eventsBroadcast
}

func (m *MetricsService) SendFailures() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sendFailures
}

func (m *MetricsService) ViewsAccepted(clipID domain.ClipID) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewsAccepted[clipID]
}

func (m *MetricsService) ViewsDuplicate(clipID domain.ClipID) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewsDuplicate[clipID]
}

func (m *MetricsService) TotalsSnapshot() (accepted, duplicate, failed int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.viewsAccepted {
		accepted += n
	}
	for _, n := range m.viewsDuplicate {
		duplicate += n
	}
	return accepted, duplicate, m.viewsFailed
}
