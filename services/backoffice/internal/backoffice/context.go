package backoffice

import (
	"context"

	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
)

type contextKey string

const contextKeySession contextKey = "session"

func withSession(ctx context.Context, s *Session) context.Context {
	ctx = context.WithValue(ctx, contextKeySession, s)
	if s != nil && s.Credentials != nil {
		ctx = edumeal.WithCredentials(ctx, s.Credentials)
	}
	return ctx
}

func sessionFrom(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKeySession).(*Session); ok {
		return s
	}
	return nil
}
