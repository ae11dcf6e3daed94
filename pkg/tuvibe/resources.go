package tuvibe

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// FetchDashboardStats implements StatsClient via GET /api/stats/dashboard.
func (c *Client) FetchDashboardStats(ctx context.Context, sess Session) (DashboardStats, error) {
	var stats DashboardStats
	if _, err := c.do(ctx, sess, http.MethodGet, "/api/stats/dashboard", nil, nil, &stats); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

// ListMarketItems implements MarketClient via GET /api/market.
func (c *Client) ListMarketItems(ctx context.Context, sess Session, query MarketListQuery) (Page[MarketItem], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(query.Page, 1)))
	params.Set("limit", strconv.Itoa(max(query.Limit, 1)))
	if query.Tag != "" {
		params.Set("tag", query.Tag)
	}
	var items []MarketItem
	outcome, err := c.do(ctx, sess, http.MethodGet, "/api/market", params, nil, &items)
	if err != nil {
		return Page[MarketItem]{}, err
	}
	return pageFrom(items, outcome), nil
}

// CreateMarketItem posts a multipart listing.
func (c *Client) CreateMarketItem(ctx context.Context, sess Session, draft MarketDraft) (Outcome, error) {
	form, err := marketForm(draft, false)
	if err != nil {
		return Outcome{}, err
	}
	return c.doMultipart(ctx, sess, http.MethodPost, "/api/market", form, nil)
}

// UpdateMarketItem replaces a listing, keeping RetainedImages and uploading NewImages.
func (c *Client) UpdateMarketItem(ctx context.Context, sess Session, id ID, draft MarketDraft) (Outcome, error) {
	form, err := marketForm(draft, true)
	if err != nil {
		return Outcome{}, err
	}
	return c.doMultipart(ctx, sess, http.MethodPut, "/api/market/"+escapeID(id), form, nil)
}

// DeleteMarketItem removes a listing.
func (c *Client) DeleteMarketItem(ctx context.Context, sess Session, id ID) (Outcome, error) {
	return c.do(ctx, sess, http.MethodDelete, "/api/market/"+escapeID(id), nil, nil, nil)
}

// ListReports implements ReportClient via GET /api/reports.
func (c *Client) ListReports(ctx context.Context, sess Session, query ReportListQuery) (Page[Report], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(query.Page, 1)))
	params.Set("pageSize", strconv.Itoa(max(query.PageSize, 1)))
	setIfPresent(params, "status", query.Status)
	setIfPresent(params, "category", query.Category)
	setIfPresent(params, "priority", query.Priority)
	setIfPresent(params, "q", query.Search)
	var reports []Report
	outcome, err := c.do(ctx, sess, http.MethodGet, "/api/reports", params, nil, &reports)
	if err != nil {
		return Page[Report]{}, err
	}
	return pageFrom(reports, outcome), nil
}

// UpdateReport applies a moderation decision.
func (c *Client) UpdateReport(ctx context.Context, sess Session, id ID, update ReportUpdate) (Outcome, error) {
	return c.do(ctx, sess, http.MethodPut, "/api/reports/"+escapeID(id), nil, update, nil)
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, sess Session, id ID) (Outcome, error) {
	return c.do(ctx, sess, http.MethodDelete, "/api/reports/"+escapeID(id), nil, nil, nil)
}

// ListModerationStories implements StoryClient via GET /api/stories/admin/moderation.
func (c *Client) ListModerationStories(ctx context.Context, sess Session, query StoryListQuery) (Page[Story], error) {
	params := url.Values{}
	setIfPresent(params, "status", query.Status)
	params.Set("page", strconv.Itoa(max(query.Page, 1)))
	params.Set("pageSize", strconv.Itoa(max(query.PageSize, 1)))
	var stories []Story
	outcome, err := c.do(ctx, sess, http.MethodGet, "/api/stories/admin/moderation", params, nil, &stories)
	if err != nil {
		return Page[Story]{}, err
	}
	return pageFrom(stories, outcome), nil
}

// ApproveStory approves a pending story.
func (c *Client) ApproveStory(ctx context.Context, sess Session, id ID) (Outcome, error) {
	return c.do(ctx, sess, http.MethodPost, "/api/stories/admin/"+escapeID(id)+"/approve", nil, struct{}{}, nil)
}

// RejectStory rejects a story with a reason. The reason must be non-empty.
func (c *Client) RejectStory(ctx context.Context, sess Session, id ID, rejection StoryRejection) (Outcome, error) {
	if strings.TrimSpace(rejection.Reason) == "" {
		return Outcome{}, &ValidationError{Field: "reason", Message: "Please provide a rejection reason"}
	}
	return c.do(ctx, sess, http.MethodPost, "/api/stories/admin/"+escapeID(id)+"/reject", nil, rejection, nil)
}

// ListMusic implements MusicClient via GET /api/stories/music.
func (c *Client) ListMusic(ctx context.Context, sess Session) ([]MusicTrack, error) {
	var tracks []MusicTrack
	if _, err := c.do(ctx, sess, http.MethodGet, "/api/stories/music", nil, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// CreateMusic uploads a new track.
func (c *Client) CreateMusic(ctx context.Context, sess Session, draft MusicDraft) (Outcome, error) {
	return c.doMultipart(ctx, sess, http.MethodPost, "/api/stories/music", musicForm(draft), nil)
}

// UpdateMusic replaces a track.
func (c *Client) UpdateMusic(ctx context.Context, sess Session, id ID, draft MusicDraft) (Outcome, error) {
	return c.doMultipart(ctx, sess, http.MethodPut, "/api/stories/music/"+escapeID(id), musicForm(draft), nil)
}

// DeleteMusic removes a track.
func (c *Client) DeleteMusic(ctx context.Context, sess Session, id ID) (Outcome, error) {
	return c.do(ctx, sess, http.MethodDelete, "/api/stories/music/"+escapeID(id), nil, nil, nil)
}

func setIfPresent(params url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		params.Set(key, value)
	}
}

func escapeID(id ID) string {
	return url.PathEscape(string(id))
}
