package edumeal

import (
	"context"
	"sync"
)

// Tokens is the backend token pair of one signed-in user.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Credentials holds a user's tokens. A silent refresh replaces them in place
// so every holder of the pointer sees the new pair.
type Credentials struct {
	mu      sync.Mutex
	tokens  Tokens
	refresh sync.Mutex
}

func NewCredentials(t Tokens) *Credentials {
	return &Credentials{tokens: t}
}

func (c *Credentials) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *Credentials) Set(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

type credentialsKey struct{}

// WithCredentials attaches the caller's credentials to ctx.
func WithCredentials(ctx context.Context, c *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

func CredentialsFrom(ctx context.Context) *Credentials {
	c, _ := ctx.Value(credentialsKey{}).(*Credentials)
	return c
}
