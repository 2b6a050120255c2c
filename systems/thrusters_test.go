package systems

import (
	"testing"

	"github.com/pthm-cable/signature/components"
)

func TestUpdateThruster_IgnitesOnLowRoll(t *testing.T) {
	th := components.Thruster{Thrust: 100}
	UpdateThruster(&th, 0.001, 0.5, 3, 0.1)
	if !th.Firing {
		t.Fatal("roll below chance*dt should ignite")
	}
	if th.BurnRemaining != 3 {
		t.Errorf("BurnRemaining = %f, want 3", th.BurnRemaining)
	}
}

func TestUpdateThruster_StaysIdleOnHighRoll(t *testing.T) {
	th := components.Thruster{Thrust: 100}
	UpdateThruster(&th, 0.9, 0.5, 3, 0.1)
	if th.Firing {
		t.Error("roll above chance*dt should not ignite")
	}
}

func TestUpdateThruster_BurnsOut(t *testing.T) {
	th := components.Thruster{Thrust: 100, Firing: true, BurnRemaining: 0.25}
	UpdateThruster(&th, 0, 1, 3, 0.1)
	if !th.Firing {
		t.Fatal("should still be firing after first tick")
	}
	UpdateThruster(&th, 0, 1, 3, 0.1)
	UpdateThruster(&th, 0, 1, 3, 0.1)
	if th.Firing {
		t.Error("burn should end once time runs out")
	}
	if th.BurnRemaining != 0 {
		t.Errorf("BurnRemaining = %f, want 0", th.BurnRemaining)
	}
}
