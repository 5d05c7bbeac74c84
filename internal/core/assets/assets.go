// Package assets bundles the case template, the entity subtree templates,
// the schema catalog, and the material property database consumed by the
// store at construction time.
package assets

import _ "embed"

// CaseTemplate is the initial case document.
//
//go:embed case.xml
var CaseTemplate []byte

// SchemaCatalog is the YAML leaf-type catalog for the case document.
//
//go:embed schema.yaml
var SchemaCatalog []byte

// CellZoneTemplate seeds new cell zones (and the default "All" zone of a
// fresh region).
//
//go:embed cell_zone.xml
var CellZoneTemplate []byte

// BoundaryConditionTemplate seeds new boundary conditions.
//
//go:embed boundary_condition.xml
var BoundaryConditionTemplate []byte

// ForceMonitorTemplate seeds force monitors.
//
//go:embed force_monitor.xml
var ForceMonitorTemplate []byte

// PointMonitorTemplate seeds point monitors.
//
//go:embed point_monitor.xml
var PointMonitorTemplate []byte

// SurfaceMonitorTemplate seeds surface monitors.
//
//go:embed surface_monitor.xml
var SurfaceMonitorTemplate []byte

// VolumeMonitorTemplate seeds volume monitors.
//
//go:embed volume_monitor.xml
var VolumeMonitorTemplate []byte

// MaterialDatabase is the CSV property database materials are instantiated
// from.
//
//go:embed materials.csv
var MaterialDatabase []byte
