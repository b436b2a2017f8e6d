package fixtures

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Reloader is a Provider backed by a YAML file. Reload swaps in a freshly parsed
// dataset; a file that fails to load leaves the current dataset in place.
type Reloader struct {
	path    string
	current atomic.Pointer[Dataset]
	logger  *zap.Logger
}

// NewReloader loads path and returns a Reloader serving it.
func NewReloader(path string, logger *zap.Logger) (*Reloader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d, err := Load(path)
	if err != nil {
		return nil, err
	}
	r := &Reloader{path: path, logger: logger}
	r.current.Store(d)
	return r, nil
}

// Path returns the watched file.
func (r *Reloader) Path() string { return r.path }

// Current implements Provider.
func (r *Reloader) Current() *Dataset { return r.current.Load() }

// Reload re-reads the file.
func (r *Reloader) Reload() error {
	d, err := Load(r.path)
	if err != nil {
		r.logger.Warn("fixture reload failed, keeping previous dataset",
			zap.String("path", r.path),
			zap.Int("records", r.Current().Len()),
			zap.Error(err))
		return err
	}
	r.current.Store(d)
	r.logger.Info("fixtures reloaded", zap.String("path", r.path), zap.Int("records", d.Len()))
	return nil
}
