package registry

import (
	"testing"
)

type nopConn struct{ id int }

func (c *nopConn) Send(v any) error { return nil }

func TestRegisterUnregister(t *testing.T) {
	r := New()
	c1, c2 := &nopConn{1}, &nopConn{2}

	r.Register("u1", c1)
	r.Register("u1", c2)
	if got := len(r.ConnectionsFor("u1")); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}
	if !r.Reachable("u1") {
		t.Fatalf("u1 should be reachable")
	}

	r.Unregister("u1", c1)
	if got := len(r.ConnectionsFor("u1")); got != 1 {
		t.Fatalf("expected 1 connection after unregister, got %d", got)
	}
	r.Unregister("u1", c2)
	if r.Reachable("u1") {
		t.Fatalf("u1 should be unreachable after last unregister")
	}
}

func TestUnreachableHandlerFiresOnLastOnly(t *testing.T) {
	r := New()
	var fired []string
	r.SetUnreachableHandler(func(id string) { fired = append(fired, id) })

	c1, c2 := &nopConn{1}, &nopConn{2}
	r.Register("u1", c1)
	r.Register("u1", c2)

	r.Unregister("u1", c1)
	if len(fired) != 0 {
		t.Fatalf("handler fired before last connection removed: %v", fired)
	}
	r.Unregister("u1", c2)
	if len(fired) != 1 || fired[0] != "u1" {
		t.Fatalf("expected one unreachable event for u1, got %v", fired)
	}
}

func TestAllocateIdentityUnique(t *testing.T) {
	r := New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.AllocateIdentity()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty identity %q", id)
		}
		seen[id] = true
	}
}
