package tuvibe

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID accepts numeric or string identifiers from the backend.
type ID string

// UnmarshalJSON decodes numbers and strings alike.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Page is one fetched slice of a resource collection. Paginated reports
// whether the server sent a pagination block; Total falls back to len(Items)
// when it did not.
type Page[T any] struct {
	Items     []T
	Total     int
	Paginated bool
}

// Pagination mirrors the optional envelope pagination block.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page,omitempty"`
	PageSize   int `json:"pageSize,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

// DashboardStats is the analytics payload.
type DashboardStats struct {
	Overview          Overview       `json:"overview"`
	TokenStats        TokenStats     `json:"tokenStats"`
	UserGrowth        []DailyCount   `json:"userGrowth,omitempty"`
	ReportsByCategory map[string]int `json:"reportsByCategory,omitempty"`
	StoriesByStatus   map[string]int `json:"storiesByStatus,omitempty"`
	TopMarketTags     map[string]int `json:"topMarketTags,omitempty"`
}

// Overview holds headline counters.
type Overview struct {
	TotalUsers     int `json:"totalUsers"`
	ActiveUsers    int `json:"activeUsers"`
	NewUsersToday  int `json:"newUsersToday"`
	TotalStories   int `json:"totalStories"`
	PendingStories int `json:"pendingStories"`
	TotalReports   int `json:"totalReports"`
	PendingReports int `json:"pendingReports"`
	MarketItems    int `json:"marketItems"`
}

// TokenStats summarizes the platform token economy.
type TokenStats struct {
	TotalIssued  float64 `json:"totalIssued"`
	TotalSpent   float64 `json:"totalSpent"`
	Circulating  float64 `json:"circulating"`
	Transactions int     `json:"transactions"`
}

// DailyCount is a single point of a daily series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MarketItem is a marketplace listing.
type MarketItem struct {
	ID             ID       `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	WhatsAppNumber string   `json:"whatsapp_number,omitempty"`
	IsFeatured     bool     `json:"is_featured"`
	Tag            string   `json:"tag,omitempty"`
	Images         []string `json:"images,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// Report is a moderation report filed by a user.
type Report struct {
	ID           ID     `json:"id"`
	ReporterName string `json:"reporter_name,omitempty"`
	ReportedType string `json:"reported_type,omitempty"`
	ReportedID   ID     `json:"reported_id,omitempty"`
	Category     string `json:"category"`
	Reason       string `json:"reason,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	AdminNotes   string `json:"admin_notes,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Story is a user story awaiting or past moderation.
type Story struct {
	ID              ID     `json:"id"`
	UserName        string `json:"user_name,omitempty"`
	MediaURL        string `json:"media_url,omitempty"`
	MediaType       string `json:"media_type,omitempty"`
	Caption         string `json:"caption,omitempty"`
	Status          string `json:"status"`
	MusicTitle      string `json:"music_title,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// MusicTrack is a background-music asset for stories.
type MusicTrack struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	AudioURL      string `json:"audio_url,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	Duration      int    `json:"duration,omitempty"`
	Order         int    `json:"order,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// ReportUpdate is the moderation payload for PUT /api/reports/:id.
type ReportUpdate struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
	Priority   string `json:"priority"`
}

// StoryRejection is the body for POST /api/stories/admin/:id/reject.
type StoryRejection struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// Report and story enumerations accepted by the backend.
var (
	ReportStatuses   = []string{"pending", "under_review", "resolved", "dismissed"}
	ReportPriorities = []string{"low", "medium", "high", "urgent"}
	ReportCategories = []string{"spam", "harassment", "inappropriate_content", "fraud", "fake_account", "other"}
	StoryStatuses    = []string{"pending", "approved", "rejected"}
	MarketTags       = []string{"hot_deals", "new_arrivals", "limited_offer", "trending"}
)

// MarketListQuery selects a marketplace page.
type MarketListQuery struct {
	Page  int
	Limit int
	Tag   string
}

// ReportListQuery selects a reports page.
type ReportListQuery struct {
	Page     int
	PageSize int
	Status   string
	Category string
	Priority string
	Search   string
}

// StoryListQuery selects a stories moderation page.
type StoryListQuery struct {
	Page     int
	PageSize int
	Status   string
}
