package core

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"flowcore/internal/core/assets"
	"flowcore/pkg/domain"
)

// templateRoot parses an embedded subtree template and returns its detached
// root element, ready to be attached to the live document.
func templateRoot(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse subtree template: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("subtree template has no root element")
	}
	return root.Copy(), nil
}

// Regions lists the configured regions in document order.
func (s *Store) Regions() []domain.Region {
	elements := s.doc.FindElements(".//regions/region")
	out := make([]domain.Region, 0, len(elements))
	for _, e := range elements {
		id, _ := strconv.Atoi(childText(e, "material"))
		out = append(out, domain.Region{Name: childText(e, "name"), MaterialID: id})
	}
	return out
}

// AddRegion creates a region bound to the first configured material, with a
// default all-cells zone and an empty boundary condition scope.
func (s *Store) AddRegion(name string) error {
	regions := s.doc.FindElement(".//regions")
	if regions == nil {
		return fmt.Errorf("%w: .//regions", domain.ErrPathResolution)
	}
	if childWithName(regions, "region", name) != nil {
		err := domain.Validation(domain.CodeAlreadyExists, ".//regions", fmt.Sprintf("region %q", name))
		s.recordOutcome(err)
		return err
	}
	materials := s.Materials()
	if len(materials) == 0 {
		err := domain.Validation(domain.CodeEmpty, ".//materials", "a region needs a material to reference")
		s.recordOutcome(err)
		return err
	}

	zone, err := templateRoot(assets.CellZoneTemplate)
	if err != nil {
		return err
	}

	region := regions.CreateElement("region")
	region.CreateElement("name").SetText(name)
	region.CreateElement("material").SetText(strconv.Itoa(materials[0].ID))
	region.CreateElement("cellZones").AddChild(zone)
	region.CreateElement("boundaryConditions")

	s.markMutated()
	return s.revalidate()
}

// RemoveRegion detaches a region unless a monitor still refers to it by name.
func (s *Store) RemoveRegion(name string) error {
	regions := s.doc.FindElement(".//regions")
	if regions == nil {
		return fmt.Errorf("%w: .//regions", domain.ErrPathResolution)
	}
	region := childWithName(regions, "region", name)
	if region == nil {
		return domain.NotFoundError{Kind: domain.EntityRegion, Name: name}
	}
	for _, ref := range s.doc.FindElements(".//monitors//region") {
		if ref.Text() == name {
			err := domain.Validation(domain.CodeReferenced, ".//regions", fmt.Sprintf("region %q referenced by a monitor", name))
			s.recordOutcome(err)
			return err
		}
	}

	regions.RemoveChild(region)
	s.markMutated()
	return s.revalidate()
}

// regionElement resolves a region by name for scoped registry operations.
func (s *Store) regionElement(name string) (*etree.Element, error) {
	regions := s.doc.FindElement(".//regions")
	if regions == nil {
		return nil, fmt.Errorf("%w: .//regions", domain.ErrPathResolution)
	}
	region := childWithName(regions, "region", name)
	if region == nil {
		return nil, domain.NotFoundError{Kind: domain.EntityRegion, Name: name}
	}
	return region, nil
}

// CellZones lists the cell zones of a region in document order.
func (s *Store) CellZones(region string) ([]domain.CellZone, error) {
	parent, err := s.regionElement(region)
	if err != nil {
		return nil, err
	}
	scope := parent.SelectElement("cellZones")
	if scope == nil {
		return nil, fmt.Errorf("%w: cellZones under region %q", domain.ErrPathResolution, region)
	}
	elements := scope.SelectElements("cellZone")
	out := make([]domain.CellZone, 0, len(elements))
	for _, e := range elements {
		id, _ := strconv.Atoi(e.SelectAttrValue("czid", "0"))
		out = append(out, domain.CellZone{ID: id, Name: childText(e, "name")})
	}
	return out, nil
}

// AddCellZone instantiates the cell zone template inside a region, allocating
// the smallest free id within that region.
func (s *Store) AddCellZone(region, name string) (int, error) {
	parent, err := s.regionElement(region)
	if err != nil {
		return 0, err
	}
	scope := parent.SelectElement("cellZones")
	if scope == nil {
		return 0, fmt.Errorf("%w: cellZones under region %q", domain.ErrPathResolution, region)
	}
	if childWithName(scope, "cellZone", name) != nil {
		err := domain.Validation(domain.CodeAlreadyExists, ".//regions", fmt.Sprintf("cell zone %q in region %q", name, region))
		s.recordOutcome(err)
		return 0, err
	}
	id, ok := smallestFreeID(usedAttrIDs(scope, "cellZone", "czid"), domain.CellZoneMaxID)
	if !ok {
		err := domain.Validation(domain.CodeCapacity, ".//regions", fmt.Sprintf("no free cell zone id below %d in region %q", domain.CellZoneMaxID, region))
		s.recordOutcome(err)
		return 0, err
	}

	zone, err := templateRoot(assets.CellZoneTemplate)
	if err != nil {
		return 0, err
	}
	zone.CreateAttr("czid", strconv.Itoa(id))
	zone.SelectElement("name").SetText(name)
	scope.AddChild(zone)

	s.markMutated()
	if err := s.revalidate(); err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveCellZone detaches a cell zone. The default all-cells zone cannot be
// removed.
func (s *Store) RemoveCellZone(region, name string) error {
	parent, err := s.regionElement(region)
	if err != nil {
		return err
	}
	scope := parent.SelectElement("cellZones")
	if scope == nil {
		return fmt.Errorf("%w: cellZones under region %q", domain.ErrPathResolution, region)
	}
	zone := childWithName(scope, "cellZone", name)
	if zone == nil {
		return domain.NotFoundError{Kind: domain.EntityCellZone, Name: name}
	}
	if name == "All" {
		verr := domain.Validation(domain.CodeEmpty, ".//regions", fmt.Sprintf("region %q keeps its all-cells zone", region))
		s.recordOutcome(verr)
		return verr
	}

	scope.RemoveChild(zone)
	s.markMutated()
	return s.revalidate()
}

// BoundaryConditions lists the boundary conditions of a region in document
// order.
func (s *Store) BoundaryConditions(region string) ([]domain.BoundaryCondition, error) {
	parent, err := s.regionElement(region)
	if err != nil {
		return nil, err
	}
	scope := parent.SelectElement("boundaryConditions")
	if scope == nil {
		return nil, fmt.Errorf("%w: boundaryConditions under region %q", domain.ErrPathResolution, region)
	}
	elements := scope.SelectElements("boundaryCondition")
	out := make([]domain.BoundaryCondition, 0, len(elements))
	for _, e := range elements {
		id, _ := strconv.Atoi(e.SelectAttrValue("bcid", "0"))
		out = append(out, domain.BoundaryCondition{
			ID:           id,
			Name:         childText(e, "name"),
			PhysicalType: childText(e, "physicalType"),
		})
	}
	return out, nil
}

// AddBoundaryCondition instantiates the boundary condition template inside a
// region. A non-empty geometricalType overrides the template default.
func (s *Store) AddBoundaryCondition(region, name, geometricalType string) (int, error) {
	parent, err := s.regionElement(region)
	if err != nil {
		return 0, err
	}
	scope := parent.SelectElement("boundaryConditions")
	if scope == nil {
		return 0, fmt.Errorf("%w: boundaryConditions under region %q", domain.ErrPathResolution, region)
	}
	if childWithName(scope, "boundaryCondition", name) != nil {
		err := domain.Validation(domain.CodeAlreadyExists, ".//regions", fmt.Sprintf("boundary condition %q in region %q", name, region))
		s.recordOutcome(err)
		return 0, err
	}
	id, ok := smallestFreeID(usedAttrIDs(scope, "boundaryCondition", "bcid"), domain.BoundaryConditionMaxID)
	if !ok {
		err := domain.Validation(domain.CodeCapacity, ".//regions", fmt.Sprintf("no free boundary condition id below %d in region %q", domain.BoundaryConditionMaxID, region))
		s.recordOutcome(err)
		return 0, err
	}

	bc, err := templateRoot(assets.BoundaryConditionTemplate)
	if err != nil {
		return 0, err
	}
	bc.CreateAttr("bcid", strconv.Itoa(id))
	bc.SelectElement("name").SetText(name)
	if geometricalType != "" {
		bc.SelectElement("geometricalType").SetText(geometricalType)
	}
	scope.AddChild(bc)

	s.markMutated()
	if err := s.revalidate(); err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveBoundaryCondition detaches a boundary condition from a region.
func (s *Store) RemoveBoundaryCondition(region, name string) error {
	parent, err := s.regionElement(region)
	if err != nil {
		return err
	}
	scope := parent.SelectElement("boundaryConditions")
	if scope == nil {
		return fmt.Errorf("%w: boundaryConditions under region %q", domain.ErrPathResolution, region)
	}
	bc := childWithName(scope, "boundaryCondition", name)
	if bc == nil {
		return domain.NotFoundError{Kind: domain.EntityBoundaryCondition, Name: name}
	}

	scope.RemoveChild(bc)
	s.markMutated()
	return s.revalidate()
}
