package tuvibe

import "context"

// StatsClient fetches analytics for the dashboard screen.
type StatsClient interface {
	FetchDashboardStats(ctx context.Context, sess Session) (DashboardStats, error)
}

// MarketClient manages marketplace listings.
type MarketClient interface {
	ListMarketItems(ctx context.Context, sess Session, query MarketListQuery) (Page[MarketItem], error)
	CreateMarketItem(ctx context.Context, sess Session, draft MarketDraft) (Outcome, error)
	UpdateMarketItem(ctx context.Context, sess Session, id ID, draft MarketDraft) (Outcome, error)
	DeleteMarketItem(ctx context.Context, sess Session, id ID) (Outcome, error)
}

// ReportClient moderates user reports.
type ReportClient interface {
	ListReports(ctx context.Context, sess Session, query ReportListQuery) (Page[Report], error)
	UpdateReport(ctx context.Context, sess Session, id ID, update ReportUpdate) (Outcome, error)
	DeleteReport(ctx context.Context, sess Session, id ID) (Outcome, error)
}

// StoryClient moderates stories.
type StoryClient interface {
	ListModerationStories(ctx context.Context, sess Session, query StoryListQuery) (Page[Story], error)
	ApproveStory(ctx context.Context, sess Session, id ID) (Outcome, error)
	RejectStory(ctx context.Context, sess Session, id ID, rejection StoryRejection) (Outcome, error)
}

// MusicClient manages story background music.
type MusicClient interface {
	ListMusic(ctx context.Context, sess Session) ([]MusicTrack, error)
	CreateMusic(ctx context.Context, sess Session, draft MusicDraft) (Outcome, error)
	UpdateMusic(ctx context.Context, sess Session, id ID, draft MusicDraft) (Outcome, error)
	DeleteMusic(ctx context.Context, sess Session, id ID) (Outcome, error)
}

// AssetResolver maps server asset paths to URLs.
type AssetResolver interface {
	ResolveAsset(path string) string
}

// Backend is a convenience union implemented by Client.
type Backend interface {
	StatsClient
	MarketClient
	ReportClient
	StoryClient
	MusicClient
	AssetResolver
}

var _ Backend = (*Client)(nil)
