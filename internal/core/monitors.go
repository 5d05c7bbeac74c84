package core

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"flowcore/internal/core/assets"
	"flowcore/pkg/domain"
)

// monitorScope binds a monitor kind to its parent path, element tag and
// subtree template.
type monitorScope struct {
	parent   string
	tag      string
	template []byte
}

func scopeForKind(kind domain.MonitorKind) (monitorScope, error) {
	switch kind {
	case domain.MonitorForce:
		return monitorScope{".//monitors/forces", "forceMonitor", assets.ForceMonitorTemplate}, nil
	case domain.MonitorPoint:
		return monitorScope{".//monitors/points", "pointMonitor", assets.PointMonitorTemplate}, nil
	case domain.MonitorSurface:
		return monitorScope{".//monitors/surfaces", "surfaceMonitor", assets.SurfaceMonitorTemplate}, nil
	case domain.MonitorVolume:
		return monitorScope{".//monitors/volumes", "volumeMonitor", assets.VolumeMonitorTemplate}, nil
	default:
		return monitorScope{}, fmt.Errorf("unknown monitor kind %q", kind)
	}
}

func (s *Store) monitorParent(scope monitorScope) (*etree.Element, error) {
	parent := s.doc.FindElement(scope.parent)
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPathResolution, scope.parent)
	}
	return parent, nil
}

// Monitors lists the monitors of one kind in document order.
func (s *Store) Monitors(kind domain.MonitorKind) ([]string, error) {
	scope, err := scopeForKind(kind)
	if err != nil {
		return nil, err
	}
	parent, err := s.monitorParent(scope)
	if err != nil {
		return nil, err
	}
	elements := parent.SelectElements(scope.tag)
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		out = append(out, childText(e, "name"))
	}
	return out, nil
}

// AddMonitor instantiates a monitor of the given kind and derives its name
// from the kind's prefix and the smallest unused index.
func (s *Store) AddMonitor(kind domain.MonitorKind) (string, error) {
	scope, err := scopeForKind(kind)
	if err != nil {
		return "", err
	}
	parent, err := s.monitorParent(scope)
	if err != nil {
		return "", err
	}

	prefix := kind.DefaultNamePrefix()
	name := ""
	for n := 1; n < domain.MonitorMaxIndex; n++ {
		candidate := prefix + strconv.Itoa(n)
		if childWithName(parent, scope.tag, candidate) == nil {
			name = candidate
			break
		}
	}
	if name == "" {
		verr := domain.Validation(domain.CodeCapacity, scope.parent, fmt.Sprintf("no free monitor name below %s%d", prefix, domain.MonitorMaxIndex))
		s.recordOutcome(verr)
		return "", verr
	}

	monitor, err := templateRoot(scope.template)
	if err != nil {
		return "", err
	}
	monitor.SelectElement("name").SetText(name)
	parent.AddChild(monitor)

	s.markMutated()
	if err := s.revalidate(); err != nil {
		return "", err
	}
	return name, nil
}

// RemoveMonitor detaches a monitor by name.
func (s *Store) RemoveMonitor(kind domain.MonitorKind, name string) error {
	scope, err := scopeForKind(kind)
	if err != nil {
		return err
	}
	parent, err := s.monitorParent(scope)
	if err != nil {
		return err
	}
	monitor := childWithName(parent, scope.tag, name)
	if monitor == nil {
		return domain.NotFoundError{Kind: domain.EntityMonitor, Name: name}
	}

	parent.RemoveChild(monitor)
	s.markMutated()
	return s.revalidate()
}
