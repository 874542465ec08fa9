package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors/errbase"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

// errorVerboseHandler expands error attrs with their verbose representation,
// including the stack trace carried by cockroachdb errors.
type errorVerboseHandler struct {
	slog.Handler
}

func newErrorVerboseHandler(next slog.Handler) slog.Handler {
	return &errorVerboseHandler{Handler: next}
}

func (h *errorVerboseHandler) Handle(ctx context.Context, rec slog.Record) error {
	rec.Attrs(func(attr slog.Attr) bool {
		if attr.Key == slogx.ErrorKey || attr.Key == "err" {
			err := attr.Value.Any()
			if err, ok := err.(error); ok && err != nil {
				if _, ok := err.(errbase.StackTraceProvider); ok {
					rec.AddAttrs(slog.String("error_verbose", fmt.Sprintf("%+v", err)))
				}
			}
		}
		return true
	})

	return h.Handler.Handle(ctx, rec)
}

func (h *errorVerboseHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorVerboseHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *errorVerboseHandler) WithGroup(name string) slog.Handler {
	return &errorVerboseHandler{Handler: h.Handler.WithGroup(name)}
}
