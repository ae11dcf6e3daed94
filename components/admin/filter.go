package admin

import (
	"strings"

	"github.com/ettle/strcase"
)

// FilterState is the tab, pagination and filter selection driving a list fetch.
// Page is zero-based.
type FilterState struct {
	Tab      int    `json:"tab"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search,omitempty"`
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// ServerPage returns the one-based page number sent to the backend.
func (f FilterState) ServerPage() int { return f.Page + 1 }

// FilterActionType enumerates reducer actions.
type FilterActionType string

const (
	ActionSetTab      FilterActionType = "set_tab"
	ActionSetPage     FilterActionType = "set_page"
	ActionSetPageSize FilterActionType = "set_page_size"
	ActionSetSearch   FilterActionType = "set_search"
	ActionSetStatus   FilterActionType = "set_status"
	ActionSetCategory FilterActionType = "set_category"
	ActionSetPriority FilterActionType = "set_priority"
	ActionReset       FilterActionType = "reset"
)

// FilterAction is one user-driven change to a FilterState.
type FilterAction struct {
	Type   FilterActionType `json:"type"`
	Number int              `json:"number,omitempty"`
	Value  string           `json:"value,omitempty"`
	// Defaults is the state restored by ActionReset.
	Defaults *FilterState `json:"-"`
}

func SetTab(index int) FilterAction        { return FilterAction{Type: ActionSetTab, Number: index} }
func SetPage(page int) FilterAction        { return FilterAction{Type: ActionSetPage, Number: page} }
func SetPageSize(size int) FilterAction    { return FilterAction{Type: ActionSetPageSize, Number: size} }
func SetSearch(text string) FilterAction   { return FilterAction{Type: ActionSetSearch, Value: text} }
func SetStatus(status string) FilterAction { return FilterAction{Type: ActionSetStatus, Value: status} }
func SetCategory(c string) FilterAction    { return FilterAction{Type: ActionSetCategory, Value: c} }
func SetPriority(p string) FilterAction    { return FilterAction{Type: ActionSetPriority, Value: p} }

// ResetFilter restores defaults.
func ResetFilter(defaults FilterState) FilterAction {
	return FilterAction{Type: ActionReset, Defaults: &defaults}
}

// Reduce applies action to state. Any change other than the page itself
// resets the page to zero. changed reports whether a new fetch is needed.
func Reduce(state FilterState, action FilterAction) (next FilterState, changed bool) {
	next = state
	switch action.Type {
	case ActionSetPage:
		if action.Number < 0 || action.Number == state.Page {
			return state, false
		}
		next.Page = action.Number
		return next, true
	case ActionSetTab:
		if action.Number < 0 {
			return state, false
		}
		next.Tab = action.Number
	case ActionSetPageSize:
		if action.Number < 1 {
			return state, false
		}
		next.PageSize = action.Number
	case ActionSetSearch:
		next.Search = action.Value
	case ActionSetStatus:
		next.Status = strings.TrimSpace(action.Value)
	case ActionSetCategory:
		next.Category = strings.TrimSpace(action.Value)
	case ActionSetPriority:
		next.Priority = strings.TrimSpace(action.Value)
	case ActionReset:
		if action.Defaults != nil {
			next = *action.Defaults
		}
		return next, next != state
	default:
		return state, false
	}
	if next == state {
		return state, false
	}
	next.Page = 0
	return next, true
}

// Tab maps a semantic label to the value sent to the server.
type Tab struct {
	Label string `json:"label"`
	// Value overrides the derived server value.
	Value string `json:"value,omitempty"`
	// ClientSide tabs filter the fetched page instead of sending a parameter.
	ClientSide bool `json:"client_side,omitempty"`
}

// TabSet is an ordered tab bar.
type TabSet []Tab

// AllLabel is the tab that sends no filter.
const AllLabel = "All"

// Param returns the server value for the tab at index. An empty value
// means no parameter is sent.
func (t TabSet) Param(index int) string {
	if index < 0 || index >= len(t) {
		return ""
	}
	tab := t[index]
	if tab.ClientSide || strings.EqualFold(tab.Label, AllLabel) {
		return ""
	}
	if tab.Value != "" {
		return tab.Value
	}
	return strcase.ToSnake(tab.Label)
}

// ClientSide reports whether the tab at index filters locally.
func (t TabSet) ClientSide(index int) bool {
	return index >= 0 && index < len(t) && t[index].ClientSide
}

// Labels lists tab labels in order.
func (t TabSet) Labels() []string {
	out := make([]string, len(t))
	for i, tab := range t {
		out[i] = tab.Label
	}
	return out
}

// Clamp keeps index within the tab bar.
func (t TabSet) Clamp(index int) int {
	if index < 0 || len(t) == 0 {
		return 0
	}
	if index >= len(t) {
		return len(t) - 1
	}
	return index
}

// Index finds a tab by label or server value, ignoring case and separators.
func (t TabSet) Index(name string) (int, bool) {
	want := strcase.ToSnake(strings.TrimSpace(name))
	for i, tab := range t {
		if strcase.ToSnake(tab.Label) == want || (tab.Value != "" && tab.Value == want) {
			return i, true
		}
	}
	return 0, false
}
