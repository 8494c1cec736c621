// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/shopspring/decimal"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeDayResolved MsgType = "day_resolved"
	MsgTypeStatsUpdate MsgType = "stats_update"
	MsgTypeGoalReached MsgType = "goal_reached"
	MsgTypeError       MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// DayResolvedMessage — broadcast after a day's distribution commits.
// ──────────────────────────────────────────────────────────────────────────────

// DayResolvedMessage carries the public aggregates of a freshly resolved day.
// Per-investor amounts never go over the broadcast channel; clients fetch
// their own portfolio over the authenticated REST API.
type DayResolvedMessage struct {
	Type      MsgType         `json:"type"`
	Day       int             `json:"day"`
	Date      string          `json:"date"`
	Net       decimal.Decimal `json:"net"`
	Fees      decimal.Decimal `json:"fees"`
	BankEnd   decimal.Decimal `json:"bank_end"`
	Timestamp time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// StatsUpdateMessage — broadcast when the global stats row changes.
// ──────────────────────────────────────────────────────────────────────────────

// StatsUpdateMessage refreshes the public fund counters on client dashboards.
type StatsUpdateMessage struct {
	Type             MsgType         `json:"type"`
	TotalInvested    decimal.Decimal `json:"total_invested"`
	TotalDistributed decimal.Decimal `json:"total_distributed"`
	ActiveInvestors  int             `json:"active_investors"`
	CurrentFeeRate   decimal.Decimal `json:"current_fee_rate"`
	Timestamp        time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// GoalReachedMessage — broadcast when an investor's profit goal latches.
// ──────────────────────────────────────────────────────────────────────────────

// GoalReachedMessage is intentionally anonymous: only the fact that some goal
// latched is public, the owner learns details via their own goal list.
type GoalReachedMessage struct {
	Type      MsgType         `json:"type"`
	Target    decimal.Decimal `json:"target"`
	Timestamp time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
