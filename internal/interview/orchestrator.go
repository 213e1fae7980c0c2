package interview

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kinin-app/interviewer/internal/archive"
	"github.com/kinin-app/interviewer/internal/brain"
	"github.com/kinin-app/interviewer/internal/observability"
	"github.com/kinin-app/interviewer/internal/state"
	"github.com/kinin-app/interviewer/internal/turns"
)

// Orchestrator sequences one exchange end to end: resolve, load,
// assemble, generate, persist, respond. Collaborators are injected so
// tests can substitute fakes; there are no package-level clients.
type Orchestrator struct {
	states      state.Store
	turnLog     turns.Store
	archiver    archive.Writer
	generator   brain.Generator
	metrics     *observability.Metrics
	recentLimit int

	// now is swappable in tests.
	now func() time.Time
}

func NewOrchestrator(
	states state.Store,
	turnLog turns.Store,
	archiver archive.Writer,
	generator brain.Generator,
	metrics *observability.Metrics,
	recentLimit int,
) *Orchestrator {
	if recentLimit <= 0 {
		recentLimit = 12
	}
	return &Orchestrator{
		states:      states,
		turnLog:     turnLog,
		archiver:    archiver,
		generator:   generator,
		metrics:     metrics,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// Exchange runs the full flow for one user message. Any failure aborts
// the remaining stages without compensating already-completed writes:
// every write is additive (or a whole-record overwrite), so a retried
// request appends new turns instead of corrupting state.
func (o *Orchestrator) Exchange(ctx context.Context, req Request) (Response, error) {
	start := o.now()
	if o.metrics != nil {
		o.metrics.InFlight.Inc()
		defer o.metrics.InFlight.Dec()
	}

	if strings.TrimSpace(req.UserID) == "" {
		return Response{}, ErrUnauthorized
	}
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, ErrMessageRequired
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	// The two reads are independent; issue them concurrently and wait
	// for both before assembling context.
	var (
		userState state.UserState
		found     bool
		recent    []turns.Turn
	)
	loadStart := o.now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userState, found, err = o.states.Get(gctx, req.UserID)
		if err != nil {
			return &StoreError{Store: "state", Op: "get", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = o.turnLog.QueryRecent(gctx, req.UserID, o.recentLimit)
		if err != nil {
			return &StoreError{Store: "turns", Op: "query_recent", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		o.countStoreError(err)
		return Response{}, err
	}
	o.observeStage("load", loadStart)

	if !found {
		userState = state.Default(req.UserID, utcISO(start))
		if o.metrics != nil {
			o.metrics.ObserveIndicator("default_state_synthesized")
		}
	}

	// Seed the profile email once; an existing value is never overwritten.
	if req.Email != "" {
		if userState.ProfileSnapshot == nil {
			userState.ProfileSnapshot = map[string]string{}
		}
		if _, ok := userState.ProfileSnapshot["email"]; !ok {
			userState.ProfileSnapshot["email"] = req.Email
			if o.metrics != nil {
				o.metrics.ObserveIndicator("profile_email_seeded")
			}
		}
	}

	packJSON, err := BuildContextPack(userState, recent).JSON()
	if err != nil {
		return Response{}, err
	}

	genStart := o.now()
	reply, err := o.generator.Generate(ctx, req.Message, packJSON)
	if err != nil {
		return Response{}, &GenerationError{Err: err}
	}
	o.observeStage("generate", genStart)
	if o.metrics != nil {
		o.metrics.ObserveGenerationLatency(o.now().Sub(genStart))
	}

	// Both turns of the exchange share one timestamp; the suffix pair
	// keeps the user turn first under the composite key.
	now := utcISO(o.now())
	userSuffix, asstSuffix := turnSuffixPair()

	persistStart := o.now()
	err = o.turnLog.Append(ctx, turns.Turn{
		UserID:    req.UserID,
		SortKey:   turns.SortKey(now, sessionID, userSuffix),
		SessionID: sessionID,
		Timestamp: now,
		Role:      turns.RoleUser,
		Content:   req.Message,
	})
	if err != nil {
		serr := &StoreError{Store: "turns", Op: "append_user", Err: err}
		o.countStoreError(serr)
		return Response{}, serr
	}
	err = o.turnLog.Append(ctx, turns.Turn{
		UserID:    req.UserID,
		SortKey:   turns.SortKey(now, sessionID, asstSuffix),
		SessionID: sessionID,
		Timestamp: now,
		Role:      turns.RoleAssistant,
		Content:   reply.Text,
		ModelID:   reply.ModelID,
	})
	if err != nil {
		serr := &StoreError{Store: "turns", Op: "append_assistant", Err: err}
		o.countStoreError(serr)
		return Response{}, serr
	}
	o.observeStage("persist_turns", persistStart)

	stateStart := o.now()
	userState.UpdatedAt = now
	userState.LastSessionID = sessionID
	if err := o.states.Put(ctx, userState); err != nil {
		serr := &StoreError{Store: "state", Op: "put", Err: err}
		o.countStoreError(serr)
		return Response{}, serr
	}
	o.observeStage("persist_state", stateStart)

	archiveStart := o.now()
	_, err = o.archiver.Put(ctx, archive.Record{
		Timestamp:        now,
		UserID:           req.UserID,
		SessionID:        sessionID,
		UserMessage:      req.Message,
		AssistantMessage: reply.Text,
		ModelID:          reply.ModelID,
	})
	if err != nil {
		serr := &StoreError{Store: "archive", Op: "put", Err: err}
		o.countStoreError(serr)
		return Response{}, serr
	}
	o.observeStage("archive", archiveStart)

	elapsed := o.now().Sub(start)
	o.observeStage("exchange_total", start)
	if o.metrics != nil {
		o.metrics.ObserveExchangeLatency(elapsed)
	}

	return Response{
		SessionID: sessionID,
		Assistant: reply.Text,
		ElapsedMS: elapsed.Milliseconds(),
	}, nil
}

func (o *Orchestrator) observeStage(stage string, since time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveStage(stage, o.now().Sub(since))
}

func (o *Orchestrator) countStoreError(err error) {
	if o.metrics == nil {
		return
	}
	if serr, ok := err.(*StoreError); ok {
		o.metrics.StoreErrors.WithLabelValues(serr.Store, serr.Op).Inc()
	}
}
