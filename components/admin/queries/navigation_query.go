package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
)

type screenLister interface {
	Screens() []admin.ScreenInfo
}

// NavigationInput is empty; navigation does not depend on the viewer.
type NavigationInput struct{}

// NavigationQuery lists the console screens in menu order.
type NavigationQuery struct {
	console screenLister
}

// NewNavigationQuery builds the query.
func NewNavigationQuery(console screenLister) *NavigationQuery {
	return &NavigationQuery{console: console}
}

var _ gocommand.Querier[NavigationInput, []admin.ScreenInfo] = (*NavigationQuery)(nil)

// Query returns the registered screens.
func (q *NavigationQuery) Query(context.Context, NavigationInput) ([]admin.ScreenInfo, error) {
	if q.console == nil {
		return nil, nil
	}
	return q.console.Screens(), nil
}
