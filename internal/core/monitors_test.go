package core

import (
	"errors"
	"reflect"
	"testing"

	"flowcore/pkg/domain"
)

func TestAddMonitorDerivesNames(t *testing.T) {
	s := newTestStore(t)

	name, err := s.AddMonitor(domain.MonitorForce)
	if err != nil {
		t.Fatalf("add monitor: %v", err)
	}
	if name != "force-mon-1" {
		t.Fatalf("unexpected name %q", name)
	}
	if name, _ := s.AddMonitor(domain.MonitorForce); name != "force-mon-2" {
		t.Fatalf("unexpected second name %q", name)
	}

	// Each kind numbers independently.
	if name, _ := s.AddMonitor(domain.MonitorPoint); name != "point-mon-1" {
		t.Fatalf("unexpected point name %q", name)
	}

	if err := s.RemoveMonitor(domain.MonitorForce, "force-mon-1"); err != nil {
		t.Fatalf("remove monitor: %v", err)
	}
	if name, _ := s.AddMonitor(domain.MonitorForce); name != "force-mon-1" {
		t.Fatalf("freed name must be reused, got %q", name)
	}

	names, err := s.Monitors(domain.MonitorForce)
	if err != nil {
		t.Fatalf("list monitors: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"force-mon-2", "force-mon-1"}) {
		t.Fatalf("unexpected document order %v", names)
	}
}

func TestAddMonitorAllKinds(t *testing.T) {
	s := newTestStore(t)
	for _, kind := range domain.MonitorKinds() {
		name, err := s.AddMonitor(kind)
		if err != nil {
			t.Fatalf("add %s monitor: %v", kind, err)
		}
		if want := kind.DefaultNamePrefix() + "1"; name != want {
			t.Fatalf("expected %q, got %q", want, name)
		}
	}
}

func TestMonitorNameProbingExhausts(t *testing.T) {
	s := newTestStore(t)
	for i := 1; i < domain.MonitorMaxIndex; i++ {
		if _, err := s.AddMonitor(domain.MonitorPoint); err != nil {
			t.Fatalf("add monitor %d: %v", i, err)
		}
	}
	if _, err := s.AddMonitor(domain.MonitorPoint); !domain.IsValidation(err, domain.CodeCapacity) {
		t.Fatalf("expected capacity guard, got %v", err)
	}
}

func TestRemoveMonitorUnknown(t *testing.T) {
	s := newTestStore(t)
	var nf domain.NotFoundError
	if err := s.RemoveMonitor(domain.MonitorVolume, "volume-mon-1"); !errors.As(err, &nf) || nf.Kind != domain.EntityMonitor {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if _, err := s.Monitors(domain.MonitorKind("acoustic")); err == nil {
		t.Fatalf("unknown kind accepted")
	}
}
