package log

import (
	"context"
	"log/slog"

	crdb "github.com/cockroachdb/errors"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// ErrorCode maps an error returned by the tree packages to one of the
// Error* codes, e.g. SINGULAR_MATRIX for a build aborted by a singular leaf.
func ErrorCode(err error) string {
	var (
		dimErr *errors.DimensionError
		nfErr  *errors.NotFittedError
	)
	switch {
	case errors.Is(err, errors.ErrSingularMatrix):
		return ErrorSingularMatrix
	case errors.Is(err, errors.ErrEmptyData):
		return ErrorEmptyData
	case errors.As(err, &nfErr):
		return ErrorNotFitted
	case errors.As(err, &dimErr):
		return ErrorDimensionMismatch
	default:
		return ErrorInvalidInput
	}
}

// errorType は error.type 属性に載せる型名を返す
func errorType(err error) string {
	var (
		modelErr *errors.ModelError
		dimErr   *errors.DimensionError
		valErr   *errors.ValueError
		cfgErr   *errors.ValidationError
		nfErr    *errors.NotFittedError
		panicErr *errors.PanicError
	)
	switch {
	case errors.As(err, &modelErr):
		return "ModelError"
	case errors.As(err, &dimErr):
		return "DimensionError"
	case errors.As(err, &valErr):
		return "ValueError"
	case errors.As(err, &cfgErr):
		return "ValidationError"
	case errors.As(err, &nfErr):
		return "NotFittedError"
	case errors.As(err, &panicErr):
		return "PanicError"
	default:
		return "error"
	}
}

// ErrorDetailHandler decorates records that carry an ErrAttr with the
// cockroachdb stacktrace and, unless the caller already set them, the
// error.code and error.type attributes.
type ErrorDetailHandler struct {
	next slog.Handler
}

// WithErrorDetails wraps next in an ErrorDetailHandler.
func WithErrorDetails(next slog.Handler) slog.Handler {
	return &ErrorDetailHandler{next: next}
}

func (h *ErrorDetailHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *ErrorDetailHandler) Handle(ctx context.Context, r slog.Record) error {
	var (
		err     error
		hasCode bool
		hasType bool
	)
	r.Attrs(func(attr slog.Attr) bool {
		switch attr.Key {
		case ErrAttrKey:
			if e, ok := attr.Value.Any().(error); ok {
				err = e
			}
		case ErrorCodeKey:
			hasCode = true
		case ErrorTypeKey:
			hasType = true
		}
		return true
	})
	if err == nil {
		return h.next.Handle(ctx, r)
	}

	if st := stacktrace(err); st != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, st))
	}
	if !hasCode {
		r.AddAttrs(slog.String(ErrorCodeKey, ErrorCode(err)))
	}
	if !hasType {
		r.AddAttrs(slog.String(ErrorTypeKey, errorType(err)))
	}
	return h.next.Handle(ctx, r)
}

func (h *ErrorDetailHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrorDetailHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ErrorDetailHandler) WithGroup(g string) slog.Handler {
	return &ErrorDetailHandler{next: h.next.WithGroup(g)}
}

func stacktrace(err error) string {
	if details := crdb.GetSafeDetails(err).SafeDetails; len(details) > 0 {
		return details[0]
	}
	return ""
}
