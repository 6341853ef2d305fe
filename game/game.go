package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"memory-match-server/config"
	"memory-match-server/matcherrors"
)

// actionType enumerates the transitions the engine loop processes.
type actionType int

const (
	actionSetup         actionType = iota
	actionSelectCard               // caller selected a card
	actionRestart                  // caller asked for a new game with the last params
	actionTeardown                 // caller disposed of the engine
	actionSetupResult              // internal: image fetch finished
	actionDeferredClear            // internal: reveal delay elapsed after a mismatch
)

// action is one item on the engine's queue. reply is closed once the transition is published.
type action struct {
	kind       actionType
	params     Params
	cardID     string
	generation uint64
	deck       Deck
	err        error
	snapshot   *State
	timer      chan struct{}
	reply      chan struct{}
}

// Engine owns the state of one game session. All transitions run on the Run goroutine,
// so publishes happen in the order their actions were queued.
type Engine struct {
	ID string

	provider    ImageProvider
	refs        ImageRefs
	revealDelay time.Duration
	logger      *slog.Logger

	// after is time.After and shuffle is rand.Shuffle; tests swap both for deterministic ones.
	after   func(time.Duration) <-chan time.Time
	shuffle func(n int, swap func(i, j int))

	state        *Subject[*State]
	status       *Subject[Status]
	displayCards *Subject[[]DisplayCard]
	details      *Subject[*Details]

	actions chan action
	done    chan struct{}

	// Owned by the Run goroutine.
	ctx         context.Context
	generation  uint64
	lastParams  *Params
	fetchCancel context.CancelFunc
	clearCancel chan struct{}
}

// NewEngine creates an engine in the idle status. Run must be started before any call.
func NewEngine(cfg *config.Config, provider ImageProvider) *Engine {
	id := uuid.NewString()
	return &Engine{
		ID:       id,
		provider: provider,
		refs: ImageRefs{
			BaseURL: cfg.ImageBaseURL,
			Width:   cfg.CardWidth,
			Height:  cfg.CardHeight,
		},
		revealDelay:  cfg.RevealDuration(),
		logger:       slog.With("tag", "game", "engine", id),
		after:        time.After,
		shuffle:      rand.Shuffle,
		state:        NewSubject[*State](nil),
		status:       NewSubject(StatusIdle),
		displayCards: NewSubject[[]DisplayCard](nil),
		details:      NewSubject[*Details](nil),
		actions:      make(chan action, 16),
		done:         make(chan struct{}),
	}
}

// State streams the current snapshot; nil until a setup resolves and after a rejected one.
func (e *Engine) State() *Subject[*State] { return e.state }

// Status streams the load status of the latest setup.
func (e *Engine) Status() *Subject[Status] { return e.status }

// DisplayCards streams the ordered display cards of the current snapshot.
func (e *Engine) DisplayCards() *Subject[[]DisplayCard] { return e.displayCards }

// Details streams the score summary; nil unless the status is resolved.
func (e *Engine) Details() *Subject[*Details] { return e.details }

// Done is closed when the engine loop has exited.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Run is the engine loop. It processes actions sequentially until Teardown
// is called or ctx is cancelled. It should be run as a goroutine.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.ctx = ctx
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return
		case a := <-e.actions:
			switch a.kind {
			case actionSetup:
				e.handleSetup(a.params)
			case actionRestart:
				if e.lastParams != nil {
					e.handleSetup(*e.lastParams)
				}
			case actionSelectCard:
				e.handleSelectCard(a.cardID)
			case actionSetupResult:
				e.handleSetupResult(a)
			case actionDeferredClear:
				e.handleDeferredClear(a)
			case actionTeardown:
				e.shutdown()
				close(a.reply)
				return
			}
			if a.reply != nil {
				close(a.reply)
			}
		}
	}
}

// Setup starts a new game, replacing any previous one once its images arrive.
func (e *Engine) Setup(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return e.dispatch(action{kind: actionSetup, params: p})
}

// Restart sets up a new game with the params of the last Setup.
func (e *Engine) Restart() error {
	return e.dispatch(action{kind: actionRestart})
}

// SelectCard reveals cardID. Selecting without a game, or selecting a card that is
// already selected or matched, does nothing.
func (e *Engine) SelectCard(cardID string) error {
	return e.dispatch(action{kind: actionSelectCard, cardID: cardID})
}

// Teardown cancels any pending fetch and deferred clear, closes every stream
// and stops the loop. Later calls return matcherrors.ErrEngineClosed.
func (e *Engine) Teardown() error {
	return e.dispatch(action{kind: actionTeardown})
}

// dispatch queues a and waits until the loop has handled it.
func (e *Engine) dispatch(a action) error {
	a.reply = make(chan struct{})
	select {
	case e.actions <- a:
	case <-e.done:
		return matcherrors.ErrEngineClosed
	}
	select {
	case <-a.reply:
		return nil
	case <-e.done:
		return matcherrors.ErrEngineClosed
	}
}

// post queues an internal action from a helper goroutine; dropped once the loop has exited.
func (e *Engine) post(a action) {
	select {
	case e.actions <- a:
	case <-e.done:
	}
}

func (e *Engine) handleSetup(p Params) {
	if e.fetchCancel != nil {
		e.fetchCancel()
	}
	e.generation++
	gen := e.generation
	e.lastParams = &p

	e.setStatus(StatusPending)

	ctx, cancel := context.WithCancel(e.ctx)
	e.fetchCancel = cancel
	count := p.ImageCount()
	e.logger.Debug("fetching images", "count", count, "generation", gen)

	go func() {
		images, err := e.provider.FetchImages(ctx, count)
		res := action{kind: actionSetupResult, params: p, generation: gen, err: err}
		if err == nil {
			res.deck = BuildDeck(images, e.refs, e.shuffle)
		}
		e.post(res)
	}()
}

func (e *Engine) handleSetupResult(a action) {
	if a.generation != e.generation {
		e.logger.Debug("dropping stale setup result", "generation", a.generation, "current", e.generation)
		return
	}
	e.fetchCancel()
	e.fetchCancel = nil

	if a.err != nil {
		var perr *ProviderError
		if !errors.As(a.err, &perr) {
			perr = &ProviderError{Op: "fetch", Err: a.err}
		}
		e.logger.Warn("setup rejected", "err", perr)
		e.publishState(nil)
		e.setStatus(StatusRejected)
		return
	}

	e.publishState(NewState(a.params, a.deck))
	e.setStatus(StatusResolved)
	e.logger.Info("game ready", "players", a.params.Players, "cards", len(a.deck.Cards), "shown", len(a.deck.Order))
}

func (e *Engine) handleSelectCard(cardID string) {
	s := e.state.Value()
	if s == nil {
		return
	}
	card, ok := s.Cards[cardID]
	if !ok {
		e.logger.Warn("select of unknown card ignored", "card", cardID)
		return
	}
	// The card dropped from the board exists only to leave its partner unmatchable.
	if orphan, ok := s.Orphan(); ok && cardID == partnerID(orphan) {
		e.logger.Warn("select of hidden card ignored", "card", cardID)
		return
	}
	if st := ToDisplayCard(s, cardID).State; st == CardSelected || st == CardMatched {
		return
	}

	switch len(s.Selected) {
	case 0:
		next := s.clone()
		next.Selected = append(next.Selected, Selection{CardID: cardID, PairKey: card.PairKey})
		e.publishState(next)

	case 1:
		prev := s.Selected[0]
		next := s.clone()
		if prev.PairKey == card.PairKey {
			next.addMatch(next.CurrentPlayer, prev.CardID, cardID)
			next.Selected = nil
			e.publishState(next)
			if next.Finished() {
				e.logger.Info("game finished", "player1", len(next.Player1Matches)/2, "player2", len(next.Player2Matches)/2)
			}
			return
		}

		next.Selected = append(next.Selected, Selection{CardID: cardID, PairKey: card.PairKey})
		e.publishState(next)

		cleared := next.clone()
		cleared.Selected = nil
		cleared.CurrentPlayer = SwapPlayer(next.CurrentPlayer, next.Players)
		e.scheduleClear(cleared)
	}
}

// scheduleClear publishes snapshot after the reveal delay. The snapshot is fixed now, so
// anything published in between is overwritten when it fires.
func (e *Engine) scheduleClear(snapshot *State) {
	e.cancelClear()
	cancel := make(chan struct{})
	e.clearCancel = cancel
	fire := e.after(e.revealDelay)
	go func() {
		select {
		case <-fire:
			e.post(action{kind: actionDeferredClear, snapshot: snapshot, timer: cancel})
		case <-cancel:
		}
	}()
}

func (e *Engine) handleDeferredClear(a action) {
	// The timer may have been cancelled after it fired but before we got here.
	if a.timer != e.clearCancel {
		return
	}
	e.clearCancel = nil
	e.publishState(a.snapshot)
}

// cancelClear stops the pending deferred clear, if any. Safe if none is pending.
func (e *Engine) cancelClear() {
	if e.clearCancel != nil {
		close(e.clearCancel)
		e.clearCancel = nil
	}
}

func (e *Engine) shutdown() {
	e.cancelClear()
	if e.fetchCancel != nil {
		e.fetchCancel()
		e.fetchCancel = nil
	}
	e.state.Close()
	e.status.Close()
	e.displayCards.Close()
	e.details.Close()
	e.logger.Debug("engine closed")
}

func (e *Engine) publishState(s *State) {
	e.state.Publish(s)
	if s == nil {
		e.displayCards.Publish(nil)
	} else {
		e.displayCards.Publish(ToDisplayCards(s))
	}
	e.publishDetails()
}

func (e *Engine) setStatus(st Status) {
	e.status.Publish(st)
	e.publishDetails()
}

func (e *Engine) publishDetails() {
	s := e.state.Value()
	if s == nil || !e.status.Value().IsResolved() {
		e.details.Publish(nil)
		return
	}
	d := ToDetails(s)
	e.details.Publish(&d)
}
