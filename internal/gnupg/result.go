package gnupg

import (
	"bytes"
	"strings"
	"sync"
	"unicode/utf8"
)

// ExitCodeUnknown is recorded when the exit status of gpg could not be retrieved.
const ExitCodeUnknown = -1

// StatusEvent is one decoded status line.
type StatusEvent struct {
	Keyword string
	Value   string
}

// Problem describes one adverse status event, e.g. {"status": "BAD_PASSPHRASE", "passphrase": "..."}.
type Problem map[string]string

// Result is the outcome of one gpg invocation.
type Result struct {
	// InvocationID uniquely identifies the run in logs and the audit trail.
	InvocationID string

	Operation Operation

	// RawData is everything read from stdout and the status channel. Status
	// bytes never split a multi-byte stdout sequence.
	RawData string

	// Output is stdout alone. Key listings and exported keys are read from here
	// because the status channel can land between stdout chunks in RawData.
	Output string

	// ExitCode is the gpg exit status, or ExitCodeUnknown.
	ExitCode int

	// Status and StatusMessage hold the most recent status event.
	Status        string
	StatusMessage string

	// Events are all status lines in the order gpg emitted them.
	Events []StatusEvent

	DebugLog []string
	Problems []Problem

	Success bool
}

// IsSuccess reports whether gpg signalled success on its status channel.
func (r Result) IsSuccess() bool {
	return r.Success
}

// ErrorMessage returns the last status message, or "Undefined Error" when
// no status event was seen.
func (r Result) ErrorMessage() string {
	if r.StatusMessage == "" {
		return "Undefined Error"
	}
	return r.StatusMessage
}

// StatusValues returns the values of every status event with keyword, in order.
func (r Result) StatusValues(keyword string) []string {
	var values []string
	for _, ev := range r.Events {
		if ev.Keyword == keyword {
			values = append(values, ev.Value)
		}
	}
	return values
}

// LastStatusValue returns the value of the final event with keyword.
func (r Result) LastStatusValue(keyword string) (string, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Keyword == keyword {
			return r.Events[i].Value, true
		}
	}
	return "", false
}

// Keys decodes the stdout of a listing invocation. Other operations carry no
// key records and yield nil.
func (r Result) Keys() []Key {
	switch r.Operation {
	case OpListKeys, OpSearchKeys:
		return DecodeKeyList(r.Output)
	}
	return nil
}

// collector owns a Result while gpg is running. Both drain goroutines share
// it; every mutation happens under mu and no I/O is done while holding it.
type collector struct {
	mu     sync.Mutex
	result Result
	raw    bytes.Buffer
	output bytes.Buffer

	// pending is a stdout suffix that ends mid-sequence, held out of raw
	// until the next chunk completes it.
	pending []byte
}

func newCollector(id string, op Operation) *collector {
	return &collector{
		result: Result{
			InvocationID: id,
			Operation:    op,
			ExitCode:     ExitCodeUnknown,
			Success:      true,
		},
	}
}

func (c *collector) appendOutput(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output.Write(p)
	buf := append(c.pending, p...)
	n := len(buf) - incompleteTail(buf)
	c.raw.Write(buf[:n])
	c.pending = append([]byte(nil), buf[n:]...)
}

// incompleteTail returns the length of a truncated UTF-8 sequence at the end
// of b, or 0.
func incompleteTail(b []byte) int {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return 0
			}
			return len(b) - i
		}
	}
	return 0
}

func (c *collector) appendStatus(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw.Write(p)
}

func (c *collector) handleStatus(keyword, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Status = keyword
	c.result.StatusMessage = value
	c.result.Events = append(c.result.Events, StatusEvent{Keyword: keyword, Value: value})
	if handler, ok := statusHandlers[keyword]; ok {
		handler(c, value)
	}
}

func (c *collector) captureDebug(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.DebugLog = append(c.result.DebugLog, line)
}

func (c *collector) addProblem(p Problem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Problems = append(c.result.Problems, p)
}

func (c *collector) setExitCode(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.ExitCode = code
}

// rawContains must be called with mu held.
func (c *collector) rawContains(s string) bool {
	return bytes.Contains(c.raw.Bytes(), []byte(s))
}

// freeze returns the finished Result. Invalid UTF-8 is replaced here instead
// of per chunk so multi-byte sequences split across reads survive.
func (c *collector) freeze() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.result
	c.raw.Write(c.pending)
	c.pending = nil
	r.RawData = strings.ToValidUTF8(c.raw.String(), "\uFFFD")
	r.Output = strings.ToValidUTF8(c.output.String(), "\uFFFD")
	r.Events = append([]StatusEvent(nil), c.result.Events...)
	r.DebugLog = append([]string(nil), c.result.DebugLog...)
	r.Problems = append([]Problem(nil), c.result.Problems...)
	return r
}
