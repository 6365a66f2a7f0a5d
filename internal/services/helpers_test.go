package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	fail  error
	calls int
}

func (s *recordingSender) Send(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, phone+":"+code)
	return nil
}

// sequenceCodes hands out the given codes in order.
func sequenceCodes(codes ...string) CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

var nop = zap.NewNop()
