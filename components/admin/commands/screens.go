package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/tuvibe/go-admin/components/admin"
)

// ScreenSource hands out the mounted screen for a code, mounting it when
// needed. *admin.Console satisfies it.
type ScreenSource interface {
	Use(ctx context.Context, code string) (admin.Screen, error)
}

var (
	errNoConsole = errors.New("commands: console is required")
	// ErrMissingID is returned when a record command has no id.
	ErrMissingID = errors.New("commands: id is required")
)

// resolve returns the screen for code as S. A failed mount fetch is not an
// error here: the screen is usable and the banner already shows it.
func resolve[S any](ctx context.Context, src ScreenSource, code string) (S, error) {
	var zero S
	if src == nil {
		return zero, errNoConsole
	}
	screen, err := src.Use(ctx, code)
	if screen == nil {
		if err == nil {
			err = fmt.Errorf("%w: %s", admin.ErrUnknownScreen, code)
		}
		return zero, err
	}
	typed, ok := screen.(S)
	if !ok {
		return zero, fmt.Errorf("%w: %s", admin.ErrUnsupportedAction, code)
	}
	return typed, nil
}
