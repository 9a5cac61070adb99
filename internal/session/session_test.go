package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testStore(ttl time.Duration) (*Store, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(ttl)
	s.now = c.now
	return s, c
}

func TestStore(t *testing.T) {
	s, c := testStore(time.Minute)
	id := s.Create("x+y")
	if got, ok := s.Get(id); !ok || got != "x+y" {
		t.Errorf("Get after Create: %q, %t", got, ok)
	}
	if _, ok := s.Get(uuid.New()); ok {
		t.Error("Get of unknown session succeeded")
	}
	s.Set(id, "x*y")
	if got, _ := s.Get(id); got != "x*y" {
		t.Errorf("Get after Set: %q", got)
	}
	c.advance(59 * time.Second)
	if _, ok := s.Get(id); !ok {
		t.Error("session expired early")
	}
	c.advance(time.Second)
	if _, ok := s.Get(id); ok {
		t.Error("session did not expire")
	}
}

func TestSweep(t *testing.T) {
	s, c := testStore(time.Minute)
	old := s.Create("x")
	c.advance(30 * time.Second)
	fresh := s.Create("y")
	c.advance(45 * time.Second)
	if n := s.Sweep(); n != 1 {
		t.Errorf("swept %d sessions, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("%d sessions left", s.Len())
	}
	if _, ok := s.Get(old); ok {
		t.Error("old session survived")
	}
	if _, ok := s.Get(fresh); !ok {
		t.Error("fresh session was swept")
	}
}

func TestConcurrent(t *testing.T) {
	s := New(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				id := s.Create("x")
				s.Get(id)
				s.Sweep()
			}
		}()
	}
	wg.Wait()
	if s.Len() != 800 {
		t.Errorf("have %d sessions, want 800", s.Len())
	}
}
