package core

import (
	"errors"
	"testing"

	"flowcore/pkg/domain"
)

func TestAddRegionSeedsDefaults(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddRegion("fluid"); err != nil {
		t.Fatalf("add region: %v", err)
	}
	regions := s.Regions()
	if len(regions) != 1 || regions[0].Name != "fluid" || regions[0].MaterialID != 1 {
		t.Fatalf("unexpected regions %+v", regions)
	}

	zones, err := s.CellZones("fluid")
	if err != nil {
		t.Fatalf("list zones: %v", err)
	}
	if len(zones) != 1 || zones[0].Name != "All" || zones[0].ID != 1 {
		t.Fatalf("expected default All zone with id 1, got %+v", zones)
	}

	bcs, err := s.BoundaryConditions("fluid")
	if err != nil {
		t.Fatalf("list boundary conditions: %v", err)
	}
	if len(bcs) != 0 {
		t.Fatalf("fresh region must have no boundary conditions, got %+v", bcs)
	}

	if err := s.AddRegion("fluid"); !domain.IsValidation(err, domain.CodeAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
}

func TestRemoveRegionGuards(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddRegion("fluid"); err != nil {
		t.Fatalf("add region: %v", err)
	}

	var nf domain.NotFoundError
	if err := s.RemoveRegion("solid"); !errors.As(err, &nf) || nf.Kind != domain.EntityRegion {
		t.Fatalf("expected not-found error, got %v", err)
	}

	name, err := s.AddMonitor(domain.MonitorForce)
	if err != nil {
		t.Fatalf("add monitor: %v", err)
	}
	if err := s.SetValue(".//monitors/forces/forceMonitor/region", "fluid"); err != nil {
		t.Fatalf("bind monitor to region: %v", err)
	}
	if err := s.RemoveRegion("fluid"); !domain.IsValidation(err, domain.CodeReferenced) {
		t.Fatalf("expected referenced guard, got %v", err)
	}

	if err := s.RemoveMonitor(domain.MonitorForce, name); err != nil {
		t.Fatalf("remove monitor: %v", err)
	}
	if err := s.RemoveRegion("fluid"); err != nil {
		t.Fatalf("unreferenced region must be removable: %v", err)
	}
	if len(s.Regions()) != 0 {
		t.Fatalf("region still listed after removal")
	}
}

func TestCellZoneLifecycle(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddRegion("fluid"); err != nil {
		t.Fatalf("add region: %v", err)
	}
	if err := s.AddRegion("coolant"); err != nil {
		t.Fatalf("add second region: %v", err)
	}

	id, err := s.AddCellZone("fluid", "rotor")
	if err != nil {
		t.Fatalf("add zone: %v", err)
	}
	if id != 2 {
		t.Fatalf("expected id 2 after the default zone, got %d", id)
	}

	// Ids are scoped per region.
	if id, _ := s.AddCellZone("coolant", "jacket"); id != 2 {
		t.Fatalf("expected per-region id 2, got %d", id)
	}

	if _, err := s.AddCellZone("fluid", "rotor"); !domain.IsValidation(err, domain.CodeAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
	if _, err := s.AddCellZone("nope", "x"); err == nil {
		t.Fatalf("unknown region accepted")
	}

	if err := s.RemoveCellZone("fluid", "All"); !domain.IsValidation(err, domain.CodeEmpty) {
		t.Fatalf("default zone must stay, got %v", err)
	}
	if err := s.RemoveCellZone("fluid", "rotor"); err != nil {
		t.Fatalf("remove zone: %v", err)
	}
	var nf domain.NotFoundError
	if err := s.RemoveCellZone("fluid", "rotor"); !errors.As(err, &nf) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	// The freed id is reallocated.
	if id, _ := s.AddCellZone("fluid", "stator"); id != 2 {
		t.Fatalf("freed id must be reused, got %d", id)
	}
}

func TestBoundaryConditionLifecycle(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddRegion("fluid"); err != nil {
		t.Fatalf("add region: %v", err)
	}

	id, err := s.AddBoundaryCondition("fluid", "inlet", "patch")
	if err != nil {
		t.Fatalf("add boundary condition: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if id, _ := s.AddBoundaryCondition("fluid", "outlet", ""); id != 2 {
		t.Fatalf("expected id 2, got %d", id)
	}

	bcs, err := s.BoundaryConditions("fluid")
	if err != nil {
		t.Fatalf("list boundary conditions: %v", err)
	}
	if len(bcs) != 2 || bcs[0].Name != "inlet" || bcs[1].Name != "outlet" {
		t.Fatalf("unexpected list %+v", bcs)
	}
	if bcs[0].PhysicalType != "wall" {
		t.Fatalf("template default physical type lost: %+v", bcs[0])
	}

	// An empty geometricalType keeps the template default.
	if got, _ := s.GetValue(".//boundaryCondition[name='outlet']/geometricalType"); got != "patch" {
		t.Fatalf("unexpected geometrical type %q", got)
	}

	if _, err := s.AddBoundaryCondition("fluid", "inlet", ""); !domain.IsValidation(err, domain.CodeAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}

	if err := s.RemoveBoundaryCondition("fluid", "inlet"); err != nil {
		t.Fatalf("remove boundary condition: %v", err)
	}
	var nf domain.NotFoundError
	if err := s.RemoveBoundaryCondition("fluid", "inlet"); !errors.As(err, &nf) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
