package admin

import (
	"context"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// StoryTabs filters stories by moderation status.
var StoryTabs = TabSet{
	{Label: AllLabel},
	{Label: "Pending"},
	{Label: "Approved"},
	{Label: "Rejected"},
}

// StoryQuery maps a filter to the moderation query.
func StoryQuery(filter FilterState, tabs TabSet) tuvibe.StoryListQuery {
	return tuvibe.StoryListQuery{
		Page:     filter.ServerPage(),
		PageSize: filter.PageSize,
		Status:   tabs.Param(filter.Tab),
	}
}

// StoryCard is a rendered story.
type StoryCard struct {
	tuvibe.Story
	Media     string `json:"media"`
	Approving bool   `json:"approving"`
	Rejecting bool   `json:"rejecting"`
	Pending   bool   `json:"pending"`
}

// StoriesView is the stories render model.
type StoriesView struct {
	ListMeta
	Cards []StoryCard `json:"cards"`
}

// StoriesScreen is the story moderation workflow.
type StoriesScreen struct {
	*listScreen[tuvibe.Page[tuvibe.Story]]
	client tuvibe.StoryClient
	assets tuvibe.AssetResolver
}

// NewStoriesScreen builds the stories screen.
func NewStoriesScreen(deps Deps) *StoriesScreen {
	s := &StoriesScreen{client: deps.Backend, assets: deps.Backend}
	fetch := func(ctx context.Context, sess tuvibe.Session, filter FilterState) (tuvibe.Page[tuvibe.Story], error) {
		return s.client.ListModerationStories(ctx, sess, StoryQuery(filter, StoryTabs))
	}
	s.listScreen = newListScreen(ScreenStories, "Stories Moderation", deps, StoryTabs, fetch)
	return s
}

// Stories returns the fetched page.
func (s *StoriesScreen) Stories() []tuvibe.Story {
	return s.loader.State().Data.Items
}

// View renders the story cards.
func (s *StoriesScreen) View() any {
	page := s.loader.State().Data
	inflight := s.mutator.InFlight()
	cards := make([]StoryCard, len(page.Items))
	for i, story := range page.Items {
		cards[i] = StoryCard{
			Story:     story,
			Media:     s.assets.ResolveAsset(story.MediaURL),
			Approving: inflight.Busy(story.ID, KindAction),
			Rejecting: inflight.Busy(story.ID, KindReject),
			Pending:   story.Status == "pending",
		}
	}
	return StoriesView{ListMeta: s.meta(page.Total, len(page.Items), page.Paginated), Cards: cards}
}

// Approve approves a story.
func (s *StoriesScreen) Approve(ctx context.Context, id tuvibe.ID) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "approve",
		RecordID: id,
		Kind:     KindAction,
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.ApproveStory(ctx, s.deps.Session, id)
		},
		SuccessMessage: "Story approved successfully",
	})
	return err
}

// Reject rejects a story. An empty reason fails before any request.
func (s *StoriesScreen) Reject(ctx context.Context, id tuvibe.ID, rejection tuvibe.StoryRejection) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "reject",
		RecordID: id,
		Kind:     KindReject,
		Validate: func() error { return s.deps.Validator.ValidateRejection(rejection) },
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.RejectStory(ctx, s.deps.Session, id, rejection)
		},
		SuccessMessage: "Story rejected successfully",
	})
	return err
}
