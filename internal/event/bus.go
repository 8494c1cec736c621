// Package event provides a small in-process publish/subscribe bus used to
// decouple the ledger engine from side effects such as goal alerts and
// websocket broadcasts.
package event

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event names.
const (
	DayResolved       = "day.resolved"
	ProfitDistributed = "profit.distributed"
	GoalReached       = "goal.reached"
	FundingReviewed   = "funding.reviewed"
)

// DayResolvedPayload is published once per resolved day, after commit.
type DayResolvedPayload struct {
	Date    string
	Day     int
	Net     decimal.Decimal
	Fees    decimal.Decimal
	BankEnd decimal.Decimal
}

// ProfitPayload is published once per investor credited during a resolution.
type ProfitPayload struct {
	UserID uuid.UUID
	Date   string
	Net    decimal.Decimal
}

// GoalPayload is published when an investor's profit goal is first reached.
type GoalPayload struct {
	GoalID uuid.UUID
	UserID uuid.UUID
	Target decimal.Decimal
}

// FundingPayload is published after a deposit or withdrawal review commits.
type FundingPayload struct {
	RequestID uuid.UUID
	UserID    uuid.UUID
	Kind      string
	Status    string
	Applied   decimal.Decimal
}

type Handler func(payload interface{})

// Bus fans events out to subscribed handlers. Handlers run in their own
// goroutines, so publishing never blocks the caller.
type Bus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) Publish(event string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if hs, ok := b.handlers[event]; ok {
		for _, h := range hs {
			go h(payload)
		}
	}
}
