package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"flowcore/internal/infra/attach"
	"flowcore/internal/infra/container"
	"flowcore/pkg/domain"
)

// Logger is the minimal structured logging surface the service emits to.
// Arguments are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewSlogLogger adapts a *slog.Logger to the service's Logger surface.
func NewSlogLogger(l *slog.Logger) Logger { return slogLogger{l} }

type slogLogger struct{ l *slog.Logger }

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// MetricsRecorder observes one service operation outcome.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Tracer opens a span around one service operation.
type Tracer interface {
	StartSpan(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan ends a span, recording the operation's error if any.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// ContainerOpener opens the case container behind a filesystem path.
type ContainerOpener func(path string) (container.Container, error)

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(svc *Service) {
		if m != nil {
			svc.metrics = m
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(svc *Service) {
		if t != nil {
			svc.tracer = t
		}
	}
}

// WithContainerOpener overrides how case containers are opened. The default
// opener selects a persistence driver from the environment.
func WithContainerOpener(open ContainerOpener) ServiceOption {
	return func(svc *Service) {
		if open != nil {
			svc.openContainer = open
		}
	}
}

// WithAttachmentStore installs the backend for case attachments. Attachment
// operations fail until one is installed.
func WithAttachmentStore(store attach.Store) ServiceOption {
	return func(svc *Service) {
		if store != nil {
			svc.attachments = store
		}
	}
}

// Service is the observable facade over the case store. Every operation is
// wrapped with logging, metrics and tracing, and the service owns the
// lifecycle of the case container used by Save and Load.
type Service struct {
	store *Store

	log     Logger
	metrics MetricsRecorder
	tracer  Tracer

	openContainer ContainerOpener
	container     container.Container
	attachments   attach.Store
}

// NewService builds a fresh case behind an observable facade.
func NewService(opts ...ServiceOption) (*Service, error) {
	store, err := NewStore()
	if err != nil {
		return nil, err
	}
	svc := &Service{
		store:         store,
		log:           noopLogger{},
		metrics:       noopMetrics{},
		tracer:        noopTracer{},
		openContainer: OpenContainer,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Store exposes the underlying store for callers that need the raw surface.
func (svc *Service) Store() *Store { return svc.store }

func (svc *Service) observe(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := svc.tracer.StartSpan(ctx, operation)
	err := fn(ctx)
	span.End(err)
	svc.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	if err != nil {
		svc.log.Warn("operation failed", "operation", operation, "error", err)
	} else {
		svc.log.Debug("operation done", "operation", operation)
	}
	return err
}

// GetValue reads a leaf value.
func (svc *Service) GetValue(ctx context.Context, path string) (string, error) {
	var out string
	err := svc.observe(ctx, "get_value", func(context.Context) error {
		var err error
		out, err = svc.store.GetValue(path)
		return err
	})
	return out, err
}

// SetValue edits a leaf value outside any session; the edit commits
// immediately when valid.
func (svc *Service) SetValue(ctx context.Context, path, value string) error {
	return svc.observe(ctx, "set_value", func(context.Context) error {
		return svc.store.SetValue(path, value)
	})
}

// GetAttribute reads an attribute.
func (svc *Service) GetAttribute(ctx context.Context, path, name string) (string, error) {
	var out string
	err := svc.observe(ctx, "get_attribute", func(context.Context) error {
		var err error
		out, err = svc.store.GetAttribute(path, name)
		return err
	})
	return out, err
}

// SetAttribute edits an attribute outside any session.
func (svc *Service) SetAttribute(ctx context.Context, path, name, value string) error {
	return svc.observe(ctx, "set_attribute", func(context.Context) error {
		return svc.store.SetAttribute(path, name, value)
	})
}

// GetBulk serializes a subtree into its nested-mapping form.
func (svc *Service) GetBulk(ctx context.Context, path string) (any, error) {
	var out any
	err := svc.observe(ctx, "get_bulk", func(context.Context) error {
		var err error
		out, err = svc.store.GetBulk(path)
		return err
	})
	return out, err
}

// RunInEditSession executes fn within a snapshot-guarded edit scope.
func (svc *Service) RunInEditSession(ctx context.Context, fn func(tx *Session) error) error {
	return svc.observe(ctx, "edit_session", func(ctx context.Context) error {
		return svc.store.RunInEditSession(ctx, fn)
	})
}

// Materials lists the configured materials.
func (svc *Service) Materials(ctx context.Context) ([]domain.Material, error) {
	var out []domain.Material
	err := svc.observe(ctx, "list_materials", func(context.Context) error {
		out = svc.store.Materials()
		return nil
	})
	return out, err
}

// MaterialLibrary lists the materials available in the bundled database.
func (svc *Service) MaterialLibrary(ctx context.Context) ([]domain.Material, error) {
	var out []domain.Material
	err := svc.observe(ctx, "material_library", func(context.Context) error {
		out = svc.store.MaterialLibrary()
		return nil
	})
	return out, err
}

// Regions lists the configured regions.
func (svc *Service) Regions(ctx context.Context) ([]domain.Region, error) {
	var out []domain.Region
	err := svc.observe(ctx, "list_regions", func(context.Context) error {
		out = svc.store.Regions()
		return nil
	})
	return out, err
}

// CellZones lists the cell zones of a region.
func (svc *Service) CellZones(ctx context.Context, region string) ([]domain.CellZone, error) {
	var out []domain.CellZone
	err := svc.observe(ctx, "list_cell_zones", func(context.Context) error {
		var err error
		out, err = svc.store.CellZones(region)
		return err
	})
	return out, err
}

// BoundaryConditions lists the boundary conditions of a region.
func (svc *Service) BoundaryConditions(ctx context.Context, region string) ([]domain.BoundaryCondition, error) {
	var out []domain.BoundaryCondition
	err := svc.observe(ctx, "list_boundary_conditions", func(context.Context) error {
		var err error
		out, err = svc.store.BoundaryConditions(region)
		return err
	})
	return out, err
}

// Monitors lists the monitors of one kind.
func (svc *Service) Monitors(ctx context.Context, kind domain.MonitorKind) ([]string, error) {
	var out []string
	err := svc.observe(ctx, "list_monitors", func(context.Context) error {
		var err error
		out, err = svc.store.Monitors(kind)
		return err
	})
	return out, err
}

// Modified reports whether unsaved edits exist.
func (svc *Service) Modified() bool { return svc.store.Modified() }

// SaveAs serializes the case into a new container at path and makes it the
// current container.
func (svc *Service) SaveAs(ctx context.Context, path string) error {
	return svc.observe(ctx, "save_as", func(ctx context.Context) error {
		cont, err := svc.openContainer(path)
		if err != nil {
			return err
		}
		if err := svc.writeConfiguration(ctx, cont); err != nil {
			cont.Close()
			return err
		}
		svc.swapContainer(cont)
		return nil
	})
}

// Save serializes the case into the current container. A container must have
// been established by a prior SaveAs or Load.
func (svc *Service) Save(ctx context.Context) error {
	return svc.observe(ctx, "save", func(ctx context.Context) error {
		if svc.container == nil {
			return fmt.Errorf("no case container open; save the case under a path first")
		}
		return svc.writeConfiguration(ctx, svc.container)
	})
}

// Load reads the configuration slot from the container at path, replaces the
// document, and makes that container current.
func (svc *Service) Load(ctx context.Context, path string) error {
	return svc.observe(ctx, "load", func(ctx context.Context) error {
		cont, err := svc.openContainer(path)
		if err != nil {
			return err
		}
		slot, err := cont.ReadSlot(ctx, container.ConfigurationSlot)
		if err != nil {
			cont.Close()
			return err
		}
		if slot.ContentType != container.ContentTypeXML {
			cont.Close()
			return fmt.Errorf("%w: slot %q holds %q", container.ErrContentType, container.ConfigurationSlot, slot.ContentType)
		}
		if err := svc.store.ReplaceDocument(slot.Payload); err != nil {
			cont.Close()
			return err
		}
		svc.swapContainer(cont)
		return nil
	})
}

// Close releases the current container, if any.
func (svc *Service) Close() error {
	if svc.container == nil {
		return nil
	}
	err := svc.container.Close()
	svc.container = nil
	return err
}

// PutAttachment stores an auxiliary table (a polynomial coefficient file, a
// tabulated profile) under key.
func (svc *Service) PutAttachment(ctx context.Context, key string, r io.Reader, opts attach.PutOptions) (attach.Info, error) {
	var out attach.Info
	err := svc.observe(ctx, "put_attachment", func(ctx context.Context) error {
		store, err := svc.attachmentStore()
		if err != nil {
			return err
		}
		out, err = store.Put(ctx, key, r, opts)
		return err
	})
	return out, err
}

// GetAttachment opens an attachment for reading. The caller closes the
// returned reader.
func (svc *Service) GetAttachment(ctx context.Context, key string) (attach.Info, io.ReadCloser, error) {
	var (
		info attach.Info
		rc   io.ReadCloser
	)
	err := svc.observe(ctx, "get_attachment", func(ctx context.Context) error {
		store, err := svc.attachmentStore()
		if err != nil {
			return err
		}
		info, rc, err = store.Get(ctx, key)
		return err
	})
	return info, rc, err
}

// DeleteAttachment removes an attachment.
func (svc *Service) DeleteAttachment(ctx context.Context, key string) error {
	return svc.observe(ctx, "delete_attachment", func(ctx context.Context) error {
		store, err := svc.attachmentStore()
		if err != nil {
			return err
		}
		return store.Delete(ctx, key)
	})
}

// ListAttachments lists attachments under a key prefix.
func (svc *Service) ListAttachments(ctx context.Context, prefix string) ([]attach.Info, error) {
	var out []attach.Info
	err := svc.observe(ctx, "list_attachments", func(ctx context.Context) error {
		store, err := svc.attachmentStore()
		if err != nil {
			return err
		}
		out, err = store.List(ctx, prefix)
		return err
	})
	return out, err
}

func (svc *Service) attachmentStore() (attach.Store, error) {
	if svc.attachments == nil {
		return nil, fmt.Errorf("no attachment store configured")
	}
	return svc.attachments, nil
}

func (svc *Service) writeConfiguration(ctx context.Context, cont container.Container) error {
	payload, err := svc.store.SerializeDocument()
	if err != nil {
		return err
	}
	slot := container.Slot{
		Name:        container.ConfigurationSlot,
		ContentType: container.ContentTypeXML,
		Payload:     payload,
	}
	if err := cont.WriteSlot(ctx, slot); err != nil {
		return err
	}
	svc.store.ClearModified()
	svc.log.Info("case saved", "driver", cont.Driver(), "path", cont.Path())
	return nil
}

func (svc *Service) swapContainer(cont container.Container) {
	if svc.container != nil && svc.container != cont {
		svc.container.Close()
	}
	svc.container = cont
}
