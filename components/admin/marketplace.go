package admin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// MarketTabs is the marketplace tab bar. Featured filters the fetched page.
var MarketTabs = TabSet{
	{Label: AllLabel},
	{Label: "Featured", ClientSide: true},
	{Label: "Hot Deals"},
	{Label: "New Arrivals"},
	{Label: "Limited Offers", Value: "limited_offer"},
	{Label: "Trending"},
}

var tagBadges = map[string]string{
	"hot_deals":     "Hot Deal",
	"new_arrivals":  "New Arrival",
	"limited_offer": "Limited Offer",
	"trending":      "Trending",
}

// TagBadge returns the badge label for a marketplace tag.
func TagBadge(tag string) string {
	if label, ok := tagBadges[tag]; ok {
		return label
	}
	if tag == "" {
		return ""
	}
	return humanize(tag)
}

// MarketQuery maps a filter to the list query. Page is sent one-based.
func MarketQuery(filter FilterState, tabs TabSet) tuvibe.MarketListQuery {
	return tuvibe.MarketListQuery{
		Page:  filter.ServerPage(),
		Limit: filter.PageSize,
		Tag:   tabs.Param(filter.Tab),
	}
}

// MarketCard is a rendered marketplace item.
type MarketCard struct {
	ID          tuvibe.ID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	WhatsApp    string    `json:"whatsapp_number,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	Badge       string    `json:"badge,omitempty"`
	Featured    bool      `json:"featured"`
	Image       string    `json:"image,omitempty"`
	ImageIndex  int       `json:"image_index"`
	ImageCount  int       `json:"image_count"`
	MoreLabel   string    `json:"more_label,omitempty"`
}

// MarketView is the marketplace render model.
type MarketView struct {
	ListMeta
	Cards []MarketCard `json:"cards"`
}

// MarketplaceScreen manages marketplace listings and their image carousel.
type MarketplaceScreen struct {
	*listScreen[tuvibe.Page[tuvibe.MarketItem]]
	client   tuvibe.MarketClient
	assets   tuvibe.AssetResolver
	carousel *Carousel
}

// NewMarketplaceScreen builds the marketplace screen.
func NewMarketplaceScreen(deps Deps) *MarketplaceScreen {
	s := &MarketplaceScreen{
		client:   deps.Backend,
		assets:   deps.Backend,
		carousel: NewCarousel(deps.CarouselPeriod, deps.Tickers),
	}
	fetch := func(ctx context.Context, sess tuvibe.Session, filter FilterState) (tuvibe.Page[tuvibe.MarketItem], error) {
		return s.client.ListMarketItems(ctx, sess, MarketQuery(filter, MarketTabs))
	}
	s.listScreen = newListScreen(ScreenMarket, "Marketplace", deps, MarketTabs, fetch)
	s.onLoaded = s.resetCarousel
	return s
}

func (s *MarketplaceScreen) resetCarousel(page tuvibe.Page[tuvibe.MarketItem]) {
	counts := make(map[tuvibe.ID]int, len(page.Items))
	for _, item := range page.Items {
		counts[item.ID] = len(item.Images)
	}
	s.carousel.Reset(counts)
}

// Items returns the displayed items: the fetched page, narrowed to featured
// items when the Featured tab is active.
func (s *MarketplaceScreen) Items() []tuvibe.MarketItem {
	page := s.loader.State().Data
	if !s.tabs.ClientSide(s.currentFilter().Tab) {
		return page.Items
	}
	out := make([]tuvibe.MarketItem, 0, len(page.Items))
	for _, item := range page.Items {
		if item.IsFeatured {
			out = append(out, item)
		}
	}
	return out
}

// Item looks up a displayed item by id.
func (s *MarketplaceScreen) Item(id tuvibe.ID) (tuvibe.MarketItem, bool) {
	for _, item := range s.loader.State().Data.Items {
		if item.ID == id {
			return item, true
		}
	}
	return tuvibe.MarketItem{}, false
}

// ImageIndex reports the carousel position for an item.
func (s *MarketplaceScreen) ImageIndex(id tuvibe.ID) int {
	return s.carousel.Index(id)
}

// View renders the card grid.
func (s *MarketplaceScreen) View() any {
	page := s.loader.State().Data
	items := s.Items()
	cards := make([]MarketCard, len(items))
	for i, item := range items {
		cards[i] = s.card(item)
	}
	return MarketView{ListMeta: s.meta(page.Total, len(page.Items), page.Paginated), Cards: cards}
}

func (s *MarketplaceScreen) card(item tuvibe.MarketItem) MarketCard {
	card := MarketCard{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Price:       formatPrice(item.Price),
		WhatsApp:    item.WhatsAppNumber,
		Tag:         item.Tag,
		Badge:       TagBadge(item.Tag),
		Featured:    item.IsFeatured,
		ImageCount:  len(item.Images),
	}
	if n := len(item.Images); n > 0 {
		idx := s.carousel.Index(item.ID) % n
		card.ImageIndex = idx
		card.Image = s.assets.ResolveAsset(item.Images[idx])
		if n > 1 {
			card.MoreLabel = fmt.Sprintf("+%d more", n-1)
		}
	}
	return card
}

// Create posts a new listing.
func (s *MarketplaceScreen) Create(ctx context.Context, draft tuvibe.MarketDraft) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "create",
		RecordID: "new",
		Validate: func() error { return s.deps.Validator.ValidateMarket(draft) },
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.CreateMarketItem(ctx, s.deps.Session, draft)
		},
		SuccessMessage: "Item created successfully",
	})
	return err
}

// Update replaces a listing, keeping draft.RetainedImages.
func (s *MarketplaceScreen) Update(ctx context.Context, id tuvibe.ID, draft tuvibe.MarketDraft) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "update",
		RecordID: id,
		Validate: func() error { return s.deps.Validator.ValidateMarket(draft) },
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.UpdateMarketItem(ctx, s.deps.Session, id, draft)
		},
		SuccessMessage: "Item updated successfully",
	})
	return err
}

// Delete removes a listing once confirm accepts.
func (s *MarketplaceScreen) Delete(ctx context.Context, id tuvibe.ID, confirm Confirmer) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:      "delete",
		RecordID:    id,
		Destructive: true,
		Confirm:     confirm,
		Prompt:      "Are you sure you want to delete this item?",
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.DeleteMarketItem(ctx, s.deps.Session, id)
		},
		SuccessMessage: "Item deleted successfully",
	})
	return err
}

// Close cancels any in-flight load, then stops every carousel timer.
func (s *MarketplaceScreen) Close() {
	s.listScreen.Close()
	s.carousel.Close()
}

func formatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', 2, 64)
}
