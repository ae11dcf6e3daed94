package admin

import (
	"context"
	"strings"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// ReportTabs filters reports by status.
var ReportTabs = TabSet{
	{Label: AllLabel},
	{Label: "Pending"},
	{Label: "Under Review"},
	{Label: "Resolved"},
	{Label: "Dismissed"},
}

// ReportQuery maps a filter to the reports query. The active tab wins over
// the status selector.
func ReportQuery(filter FilterState, tabs TabSet) tuvibe.ReportListQuery {
	status := tabs.Param(filter.Tab)
	if status == "" {
		status = filter.Status
	}
	return tuvibe.ReportListQuery{
		Page:     filter.ServerPage(),
		PageSize: filter.PageSize,
		Status:   status,
		Category: filter.Category,
		Priority: filter.Priority,
		Search:   strings.TrimSpace(filter.Search),
	}
}

// ReportRow is a rendered report.
type ReportRow struct {
	tuvibe.Report
	CategoryLabel string `json:"category_label"`
	StatusLabel   string `json:"status_label"`
	PriorityLabel string `json:"priority_label"`
	Busy          bool   `json:"busy"`
}

// ReportsView is the reports render model.
type ReportsView struct {
	ListMeta
	Rows       []ReportRow `json:"rows"`
	Statuses   []string    `json:"statuses"`
	Priorities []string    `json:"priorities"`
	Categories []string    `json:"categories"`
}

// ReportsScreen is the moderation queue for user reports.
type ReportsScreen struct {
	*listScreen[tuvibe.Page[tuvibe.Report]]
	client tuvibe.ReportClient
}

// NewReportsScreen builds the reports screen.
func NewReportsScreen(deps Deps) *ReportsScreen {
	s := &ReportsScreen{client: deps.Backend}
	fetch := func(ctx context.Context, sess tuvibe.Session, filter FilterState) (tuvibe.Page[tuvibe.Report], error) {
		return s.client.ListReports(ctx, sess, ReportQuery(filter, ReportTabs))
	}
	s.listScreen = newListScreen(ScreenReports, "Reports", deps, ReportTabs, fetch)
	return s
}

// Reports returns the fetched page.
func (s *ReportsScreen) Reports() []tuvibe.Report {
	return s.loader.State().Data.Items
}

// View renders the report table.
func (s *ReportsScreen) View() any {
	page := s.loader.State().Data
	inflight := s.mutator.InFlight()
	rows := make([]ReportRow, len(page.Items))
	for i, rep := range page.Items {
		rows[i] = ReportRow{
			Report:        rep,
			CategoryLabel: humanize(rep.Category),
			StatusLabel:   humanize(rep.Status),
			PriorityLabel: humanize(rep.Priority),
			Busy:          inflight.Busy(rep.ID, KindAction),
		}
	}
	return ReportsView{
		ListMeta:   s.meta(page.Total, len(page.Items), page.Paginated),
		Rows:       rows,
		Statuses:   tuvibe.ReportStatuses,
		Priorities: tuvibe.ReportPriorities,
		Categories: tuvibe.ReportCategories,
	}
}

// Update applies a status/priority decision with admin notes.
func (s *ReportsScreen) Update(ctx context.Context, id tuvibe.ID, update tuvibe.ReportUpdate) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "update_status",
		RecordID: id,
		Validate: func() error { return s.deps.Validator.ValidateReportUpdate(update) },
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.UpdateReport(ctx, s.deps.Session, id, update)
		},
		SuccessMessage: "Report updated successfully",
	})
	return err
}

// Delete removes a report once confirm accepts.
func (s *ReportsScreen) Delete(ctx context.Context, id tuvibe.ID, confirm Confirmer) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:      "delete",
		RecordID:    id,
		Destructive: true,
		Confirm:     confirm,
		Prompt:      "Are you sure you want to delete this report?",
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.DeleteReport(ctx, s.deps.Session, id)
		},
		SuccessMessage: "Report deleted successfully",
	})
	return err
}
