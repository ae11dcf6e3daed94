package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
)

type screenSource interface {
	Use(ctx context.Context, code string) (admin.Screen, error)
}

// ViewInput selects the screen to render.
type ViewInput struct {
	Screen string `json:"screen"`
}

// ViewOutput is the JSON form of a mounted screen.
type ViewOutput struct {
	Screen string `json:"screen"`
	Title  string `json:"title"`
	View   any    `json:"view"`
}

// ViewQuery mounts a screen when needed and returns its render model. A
// failed fetch is reported inside the view's error banner, not as an error.
type ViewQuery struct {
	console screenSource
}

// NewViewQuery builds the query.
func NewViewQuery(console screenSource) *ViewQuery {
	return &ViewQuery{console: console}
}

var _ gocommand.Querier[ViewInput, ViewOutput] = (*ViewQuery)(nil)

// Query resolves the view for the screen.
func (q *ViewQuery) Query(ctx context.Context, input ViewInput) (ViewOutput, error) {
	if q.console == nil {
		return ViewOutput{}, errors.New("view query requires console")
	}
	screen, err := q.console.Use(ctx, input.Screen)
	if screen == nil {
		return ViewOutput{}, err
	}
	return ViewOutput{Screen: screen.Code(), Title: screen.Title(), View: screen.View()}, nil
}
