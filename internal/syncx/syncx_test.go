package syncx

import (
	"sync"
	"testing"
)

func TestGuardGetSet(t *testing.T) {
	g := NewGuard("idle")

	if g.Get() != "idle" {
		t.Errorf("Get() = %q, want idle", g.Get())
	}

	g.Set("running")
	if g.Get() != "running" {
		t.Errorf("Get() = %q, want running", g.Get())
	}
}

func TestGuardUpdate(t *testing.T) {
	g := NewGuard(0)

	result := g.Update(func(v *int) any {
		*v++
		return *v
	})

	if result.(int) != 1 {
		t.Errorf("Update result = %v, want 1", result)
	}
	if g.Get() != 1 {
		t.Errorf("Get() = %d, want 1", g.Get())
	}
}

func TestGuardConcurrent(t *testing.T) {
	g := NewGuard(0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Update(func(v *int) any {
				*v++
				return nil
			})
		}()
	}
	wg.Wait()

	if g.Get() != 100 {
		t.Errorf("Get() = %d, want 100", g.Get())
	}
}

func TestFlag(t *testing.T) {
	var f Flag

	if f.IsSet() {
		t.Error("new flag should not be set")
	}

	f.Set()
	if !f.IsSet() {
		t.Error("flag should be set after Set")
	}

	if !f.TakeDown() {
		t.Error("TakeDown should report true for a raised flag")
	}
	if f.IsSet() {
		t.Error("flag should be lowered after TakeDown")
	}
	if f.TakeDown() {
		t.Error("TakeDown should report false for a lowered flag")
	}
}
