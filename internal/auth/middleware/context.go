package auth

import "context"

type subjectKey struct{}

// WithSubject records the authenticated user id for the request.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFromContext returns the authenticated user id, or "" when the
// request carries no valid token.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey{}).(string)
	return sub
}
