package httpapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strconv"
	"strings"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/queries"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// isForm reports whether the content type is an urlencoded HTML form.
func isForm(contentType string) bool {
	media, _, err := mime.ParseMediaType(contentType)
	return err == nil && media == "application/x-www-form-urlencoded"
}

func decodeBody(contentType string, body []byte, dst any, fromForm func(url.Values) error) error {
	if isForm(contentType) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return err
		}
		return fromForm(values)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// DecodeFilterAction reads a filter action from JSON or form fields
// (type, number, value).
func DecodeFilterAction(contentType string, body []byte) (admin.FilterAction, error) {
	var action admin.FilterAction
	err := decodeBody(contentType, body, &action, func(v url.Values) error {
		action.Type = admin.FilterActionType(v.Get("type"))
		action.Value = v.Get("value")
		if raw := v.Get("number"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("httpapi: number: %w", err)
			}
			action.Number = n
		}
		return nil
	})
	if err == nil && action.Type == "" {
		err = fmt.Errorf("httpapi: filter action type is required")
	}
	return action, err
}

// DecodeRejection reads a story rejection (reason, notes).
func DecodeRejection(contentType string, body []byte) (tuvibe.StoryRejection, error) {
	var rejection tuvibe.StoryRejection
	err := decodeBody(contentType, body, &rejection, func(v url.Values) error {
		rejection.Reason = v.Get("reason")
		rejection.Notes = v.Get("notes")
		return nil
	})
	return rejection, err
}

// DecodeReportUpdate reads a report decision (status, priority, admin_notes).
func DecodeReportUpdate(contentType string, body []byte) (tuvibe.ReportUpdate, error) {
	var update tuvibe.ReportUpdate
	err := decodeBody(contentType, body, &update, func(v url.Values) error {
		update.Status = v.Get("status")
		update.Priority = v.Get("priority")
		update.AdminNotes = v.Get("admin_notes")
		return nil
	})
	return update, err
}

// DecodeJSON reads a JSON-only payload such as a draft with attachments.
func DecodeJSON(body []byte, dst any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("httpapi: request body is required")
	}
	return json.Unmarshal(body, dst)
}

// Confirmed reads the confirm query parameter.
func Confirmed(raw string) bool {
	ok, _ := strconv.ParseBool(raw)
	return ok
}

// NotificationsInput reads the ?pending and ?limit parameters of the
// notifications endpoint. An unparsable limit means no limit.
func NotificationsInput(pending, limit string) queries.NotificationsInput {
	n, err := strconv.Atoi(limit)
	if err != nil || n < 0 {
		n = 0
	}
	return queries.NotificationsInput{PendingOnly: Confirmed(pending), Limit: n}
}
