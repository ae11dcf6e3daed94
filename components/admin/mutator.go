package admin

import (
	"context"
	"log/slog"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// Mutation describes one create/update/delete/approve/reject request.
type Mutation struct {
	Action   string
	RecordID tuvibe.ID
	// Kind selects the in-flight slot; zero value uses KindAction.
	Kind ActionKind
	// Confirm gates destructive mutations; Prompt is shown to the confirmer.
	Destructive bool
	Confirm     Confirmer
	Prompt      string
	// Validate runs before any network call.
	Validate func() error
	Run      func(ctx context.Context) (tuvibe.Outcome, error)
	// SuccessMessage is used when the server sends no message.
	SuccessMessage string
}

// Mutator runs mutations for a screen: on success it publishes a transient
// notification and re-fetches once; on failure it publishes a blocking
// notification and leaves the data alone.
type Mutator struct {
	screen    string
	refetch   func(ctx context.Context) error
	notifier  Notifier
	inflight  *InFlight
	telemetry Telemetry
	logger    *slog.Logger
}

// MutatorOptions wires a Mutator.
type MutatorOptions struct {
	Screen    string
	Refetch   func(ctx context.Context) error
	Notifier  Notifier
	InFlight  *InFlight
	Telemetry Telemetry
	Logger    *slog.Logger
}

// NewMutator builds a mutator.
func NewMutator(opts MutatorOptions) *Mutator {
	inflight := opts.InFlight
	if inflight == nil {
		inflight = NewInFlight()
	}
	return &Mutator{
		screen:    opts.Screen,
		refetch:   opts.Refetch,
		notifier:  normalizeNotifier(opts.Notifier),
		inflight:  inflight,
		telemetry: normalizeTelemetry(opts.Telemetry),
		logger:    normalizeLogger(opts.Logger),
	}
}

// InFlight exposes the per-record tracker.
func (m *Mutator) InFlight() *InFlight { return m.inflight }

// Execute runs mut. It returns ErrNotConfirmed without sending anything when
// a destructive mutation is not confirmed, and ErrActionInFlight when the
// same record/kind is already busy.
func (m *Mutator) Execute(ctx context.Context, mut Mutation) (tuvibe.Outcome, error) {
	if mut.Run == nil {
		return tuvibe.Outcome{}, ErrUnsupportedAction
	}
	if mut.Validate != nil {
		if err := mut.Validate(); err != nil {
			m.fail(ctx, mut, err)
			return tuvibe.Outcome{}, err
		}
	}
	if mut.Destructive && !confirmed(ctx, mut.Confirm, mut.Prompt) {
		m.telemetry.Record(ctx, "admin.mutation.cancelled", m.payload(mut))
		return tuvibe.Outcome{}, ErrNotConfirmed
	}
	kind := mut.Kind
	if kind == "" {
		kind = KindAction
	}
	release, err := m.inflight.Acquire(mut.RecordID, kind)
	if err != nil {
		return tuvibe.Outcome{}, err
	}
	outcome, err := mut.Run(ctx)
	release()
	if err != nil {
		m.fail(ctx, mut, err)
		return outcome, err
	}

	message := outcome.Message
	if message == "" {
		message = mut.SuccessMessage
	}
	m.notifier.Notify(ctx, Notification{
		Screen:   m.screen,
		Action:   mut.Action,
		RecordID: string(mut.RecordID),
		Level:    LevelSuccess,
		Message:  message,
	})
	m.telemetry.Record(ctx, "admin.mutation.succeeded", m.payload(mut))
	if m.refetch != nil {
		if err := m.refetch(ctx); err != nil {
			m.logger.Warn("refetch after mutation failed", "screen", m.screen, "action", mut.Action, "error", err)
		}
	}
	return outcome, nil
}

func (m *Mutator) fail(ctx context.Context, mut Mutation, err error) {
	m.notifier.Notify(ctx, Notification{
		Screen:   m.screen,
		Action:   mut.Action,
		RecordID: string(mut.RecordID),
		Level:    LevelError,
		Message:  tuvibe.Message(err),
		Blocking: true,
	})
	payload := m.payload(mut)
	payload["error"] = err.Error()
	m.telemetry.Record(ctx, "admin.mutation.failed", payload)
	m.logger.Warn("mutation failed", "screen", m.screen, "action", mut.Action, "id", mut.RecordID, "error", err)
}

func (m *Mutator) payload(mut Mutation) map[string]any {
	return map[string]any{
		"screen":    m.screen,
		"action":    mut.Action,
		"record_id": string(mut.RecordID),
	}
}
