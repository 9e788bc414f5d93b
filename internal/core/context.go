package core

import "context"

type requestInfoKey struct{}

// RequestInfo identifies who started an operation, for the import log.
type RequestInfo struct {
	ClientIP  string
	UserAgent string
}

// WithRequestInfo attaches caller details to ctx.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFrom returns the caller details, zero if none were attached.
func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}
