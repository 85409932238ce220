package domain

import "time"

// History is the bounded, ordered log of past exchanges used for prompt
// construction and inspection. When full, the oldest exchange is evicted.
type History struct {
	capacity  int
	exchanges []Exchange
}

// NewHistory creates an empty history holding at most capacity exchanges.
// Non-positive capacities fall back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		capacity:  capacity,
		exchanges: make([]Exchange, 0, capacity),
	}
}

// Append records an exchange, evicting the oldest entries beyond capacity.
func (h *History) Append(exchange Exchange) {
	h.exchanges = append(h.exchanges, exchange)
	if overflow := len(h.exchanges) - h.capacity; overflow > 0 {
		// copy into a fresh slice so evicted entries can be collected
		kept := make([]Exchange, h.capacity)
		copy(kept, h.exchanges[overflow:])
		h.exchanges = kept
	}
}

// Entries returns a copy of all exchanges, oldest first.
func (h *History) Entries() []Exchange {
	out := make([]Exchange, len(h.exchanges))
	copy(out, h.exchanges)
	return out
}

// Last returns a copy of at most n of the most recent exchanges, oldest first.
func (h *History) Last(n int) []Exchange {
	if n <= 0 {
		return nil
	}
	start := len(h.exchanges) - n
	if start < 0 {
		start = 0
	}
	out := make([]Exchange, len(h.exchanges)-start)
	copy(out, h.exchanges[start:])
	return out
}

// Clear resets the history to empty.
func (h *History) Clear() {
	h.exchanges = make([]Exchange, 0, h.capacity)
}

// Len returns the number of stored exchanges.
func (h *History) Len() int {
	return len(h.exchanges)
}

// Capacity returns the configured window size.
func (h *History) Capacity() int {
	return h.capacity
}

// HistoryRecord is a persisted turn in the history archive. Unlike Exchange
// it also covers turns that were skipped and never executed.
type HistoryRecord struct {
	SessionID       string    `json:"session_id"`
	Timestamp       time.Time `json:"timestamp"`
	Prompt          string    `json:"prompt"`
	Command         string    `json:"command"`
	Explanation     string    `json:"explanation"`
	Model           string    `json:"model"`
	WorkingDir      string    `json:"working_dir"`
	Executed        bool      `json:"executed"`
	Success         bool      `json:"success"`
	ExitCode        int       `json:"exit_code"`
	Outcome         Outcome   `json:"outcome"`
	ExecutionTimeMS int64     `json:"execution_time_ms"`
}

// Outcome describes how a turn ended.
type Outcome string

const (
	OutcomeExecuted Outcome = "executed"
	OutcomeDeclined Outcome = "declined"
	OutcomeUnsafe   Outcome = "unsafe"
)
