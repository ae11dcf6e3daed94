package admin

import "context"

// Confirmer gates destructive actions. A nil Confirmer never confirms.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	if f == nil {
		return false
	}
	return f(ctx, prompt)
}

// Confirmed returns a Confirmer with a fixed answer, e.g. from a ?confirm=true query.
func Confirmed(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return answer })
}

func confirmed(ctx context.Context, c Confirmer, prompt string) bool {
	if c == nil {
		return false
	}
	return c.Confirm(ctx, prompt)
}
