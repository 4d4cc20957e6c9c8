package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// scopedCore filters the wrapped core at its own level instead of the shared one.
type scopedCore struct {
	zapcore.Core

	level zapcore.LevelEnabler
}

// Enabled reports whether l passes the scoped level.
func (c *scopedCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// Check adds the core to ce when the entry passes the scoped level.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *scopedCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// With keeps the scoped level on child cores.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *scopedCore) With(fields []zapcore.Field) zapcore.Core {
	return &scopedCore{
		Core:  c.Core.With(fields),
		level: c.level,
	}
}

// LevelOption overrides the level of a logger built from an existing one,
// both above and below the global level.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func LevelOption(level zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &scopedCore{Core: core, level: level}
	})
}

// WithLevel returns a child context whose logger uses level, e.g. to keep a
// CLI quiet or to debug one component without touching the global level.
func WithLevel(ctx context.Context, level zapcore.Level) context.Context {
	return ToContext(ctx, FromContext(ctx).WithOptions(LevelOption(level)))
}
