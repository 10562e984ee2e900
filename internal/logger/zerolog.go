// Package logger hands out request-scoped zerolog loggers.
package logger

import (
	"context"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FromContext returns the logger stored in ctx by the logging middleware,
// or the global logger when ctx is nil or carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &log.Logger
	}
	l := pkgzerolog.FromContext(ctx)
	if l == nil || l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
