package fidelity

import (
	"log/slog"

	"github.com/aamirmursleen/Auradoc-sub003/config"
)

// Option configures a Composite call.
type Option func(*options)

type options struct {
	completed      map[string]bool
	signatureImage string
	logger         *slog.Logger
	engine         config.Engine
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.Default(),
		engine: config.Defaults().Engine,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.engine.SetDefaults()
	return o
}

// WithCompletedSigners restricts drawing to fields whose signer is listed.
// Fields without a signer are always drawn. Without this option every
// signer counts as completed.
func WithCompletedSigners(ids ...string) Option {
	return func(o *options) {
		if o.completed == nil {
			o.completed = make(map[string]bool, len(ids))
		}
		for _, id := range ids {
			o.completed[id] = true
		}
	}
}

// WithSignatureImage sets the data URL used by signature and initials
// fields that carry no image of their own.
func WithSignatureImage(dataURL string) Option {
	return func(o *options) {
		o.signatureImage = dataURL
	}
}

// WithLogger sets the logger for per-field failures. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConfig replaces all engine settings with cfg. Only Workers and
// DecodeTimeout fall back to defaults when unset; zero CompressLevel,
// MaxImageDimension and Repair are taken as given. Start from
// config.Defaults().Engine to change a single value.
func WithConfig(cfg config.Engine) Option {
	return func(o *options) {
		o.engine = cfg
	}
}

func (o *options) signerCompleted(id string) bool {
	return o.completed == nil || id == "" || o.completed[id]
}
