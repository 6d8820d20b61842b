package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters for workflow activity and the
// HTTP surface.
type Metrics struct {
	mu sync.Mutex

	ticketsCreated     int64
	ticketsClosed      int64
	escalationsRaised  int64
	assignmentFailures int64

	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// TicketCreated increments the creation counter.
func (m *Metrics) TicketCreated() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketsCreated++
}

// TicketClosed increments the close counter.
func (m *Metrics) TicketClosed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketsClosed++
}

// EscalationRaised increments the SLA escalation counter.
func (m *Metrics) EscalationRaised() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escalationsRaised++
}

// AssignmentFailed increments the counter for tickets left unassigned.
func (m *Metrics) AssignmentFailed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignmentFailures++
}

// WorkflowCounters returns current workflow totals.
func (m *Metrics) WorkflowCounters() (created, closed, escalations, assignmentFailures int64) {
	if m == nil {
		return 0, 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticketsCreated, m.ticketsClosed, m.escalationsRaised, m.assignmentFailures
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}
