package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
)

type notificationSource interface {
	Pending() []admin.Notification
	Recent(limit int) []admin.Notification
}

// NotificationsInput selects pending alerts or the recent history.
type NotificationsInput struct {
	PendingOnly bool `json:"pending_only"`
	Limit       int  `json:"limit"`
}

// NotificationsQuery reads the notification hub.
type NotificationsQuery struct {
	hub notificationSource
}

// NewNotificationsQuery builds the query.
func NewNotificationsQuery(hub notificationSource) *NotificationsQuery {
	return &NotificationsQuery{hub: hub}
}

var _ gocommand.Querier[NotificationsInput, []admin.Notification] = (*NotificationsQuery)(nil)

// Query returns notifications, newest last.
func (q *NotificationsQuery) Query(_ context.Context, input NotificationsInput) ([]admin.Notification, error) {
	if q.hub == nil {
		return nil, nil
	}
	if input.PendingOnly {
		return q.hub.Pending(), nil
	}
	return q.hub.Recent(input.Limit), nil
}
