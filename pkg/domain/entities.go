// Package domain defines the entity value types, the content-validation
// error taxonomy, and the bulk-mapping type shared between the flowcore
// store and its consumers.
package domain

// EntityKind identifies the kind of configuration entity a registry manages.
type EntityKind string

// Supported entity kind identifiers.
const (
	// EntityMaterial identifies a material definition.
	EntityMaterial EntityKind = "material"
	// EntityRegion identifies a mesh region.
	EntityRegion EntityKind = "region"
	// EntityCellZone identifies a cell zone scoped to a region.
	EntityCellZone EntityKind = "cell_zone"
	// EntityBoundaryCondition identifies a boundary condition scoped to a region.
	EntityBoundaryCondition EntityKind = "boundary_condition"
	// EntityMonitor identifies a solution monitor.
	EntityMonitor EntityKind = "monitor"
)

// ID ceilings per entity scope. Allocation always returns the smallest id
// not in use within [1, ceiling]; exhaustion yields CodeCapacity.
const (
	MaterialMaxID          = 1000
	CellZoneMaxID          = 1000
	BoundaryConditionMaxID = 10000
	MonitorMaxIndex        = 100
)

// MaterialPhase enumerates the physical phases known to the material database.
type MaterialPhase string

// Canonical material phases.
const (
	PhaseGas    MaterialPhase = "gas"
	PhaseLiquid MaterialPhase = "liquid"
	PhaseSolid  MaterialPhase = "solid"
)

// Material describes a configured material as returned by the registry.
type Material struct {
	ID              int
	Name            string
	ChemicalFormula string
	Phase           MaterialPhase
}

// Region describes a configured mesh region.
type Region struct {
	Name       string
	MaterialID int
}

// CellZone describes a cell zone within a region.
type CellZone struct {
	ID   int
	Name string
}

// BoundaryCondition describes a boundary condition within a region.
type BoundaryCondition struct {
	ID           int
	Name         string
	PhysicalType string
}

// MonitorKind distinguishes the four solution monitor families.
type MonitorKind string

// Supported monitor kinds.
const (
	MonitorForce   MonitorKind = "force"
	MonitorPoint   MonitorKind = "point"
	MonitorSurface MonitorKind = "surface"
	MonitorVolume  MonitorKind = "volume"
)

// DefaultNamePrefix returns the prefix used when deriving a monitor's
// default display name ("<prefix><n>" for the smallest unused n).
func (k MonitorKind) DefaultNamePrefix() string {
	switch k {
	case MonitorForce:
		return "force-mon-"
	case MonitorPoint:
		return "point-mon-"
	case MonitorSurface:
		return "surface-mon-"
	case MonitorVolume:
		return "volume-mon-"
	default:
		return ""
	}
}

// MonitorKinds lists all monitor kinds in a stable order.
func MonitorKinds() []MonitorKind {
	return []MonitorKind{MonitorForce, MonitorPoint, MonitorSurface, MonitorVolume}
}
