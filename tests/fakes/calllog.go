package fakes

import (
	"fmt"
	"sync"
)

// Call is one recorded interaction with a fake.
type Call struct {
	// Method is the interface method, e.g. "Get", "Upsert", "Read", "Write".
	Method string
	// Target is the secret name or file path the call addressed.
	Target string
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Method, c.Target)
}

// CallLog records calls across several fakes in the order they happened.
type CallLog struct {
	mu    sync.Mutex
	calls []Call
}

// Record appends a call.
func (l *CallLog) Record(method, target string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Method: method, Target: target})
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// Strings returns the calls formatted as "Method(target)".
func (l *CallLog) Strings() []string {
	calls := l.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Count returns how many calls to method were recorded.
func (l *CallLog) Count(method string) int {
	n := 0
	for _, c := range l.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}
