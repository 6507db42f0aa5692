package auth

import "context"

type contextKey string

const accountKey contextKey = "carbon-auth-account"

// WithAccount stores the account on the context.
func WithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// FromContext retrieves the account stored by WithAccount.
func FromContext(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(accountKey).(Account)
	return a, ok
}
