package game

import (
	"fmt"
	"math/rand"
	"time"

	"casino_server/internal/domain"

	"github.com/google/uuid"
)

const (
	handSize  = 12
	tableDeal = 4

	minBuildValue = 2
	maxBuildValue = 14
)

// ActionRequest is one player action against a room, with all targets given
// by id. Capture targets in particular are always an explicit build-id set:
// builds are never resolved by value.
type ActionRequest struct {
	RoomID   string            `json:"room_id"`
	PlayerID string            `json:"player_id"`
	Type     domain.ActionType `json:"action_type"`

	CardID         string     `json:"card_id,omitempty"`          // hand card played
	TargetCardIDs  []string   `json:"target_card_ids,omitempty"`  // loose table cards
	TargetBuildIDs []string   `json:"target_build_ids,omitempty"` // builds, by id
	BuildValue     int        `json:"build_value,omitempty"`
	Components     [][]string `json:"components,omitempty"` // card ids per component

	SubmittedAt time.Time `json:"submitted_at"`
}

// ActionData returns the canonical payload used for the content-derived
// action id and the event log.
func (r ActionRequest) ActionData() map[string]any {
	data := map[string]any{}
	if r.CardID != "" {
		data["card_id"] = r.CardID
	}
	if len(r.TargetCardIDs) > 0 {
		data["target_card_ids"] = r.TargetCardIDs
	}
	if len(r.TargetBuildIDs) > 0 {
		data["target_build_ids"] = r.TargetBuildIDs
	}
	if r.BuildValue != 0 {
		data["build_value"] = r.BuildValue
	}
	if len(r.Components) > 0 {
		data["components"] = r.Components
	}
	return data
}

// EndsTurn reports whether a successful action of this type passes the turn.
// Table-only builds leave the turn with the acting player, who still has to
// play a hand card.
func EndsTurn(t domain.ActionType) bool {
	switch t {
	case domain.ActionCapture, domain.ActionBuild, domain.ActionTrail:
		return true
	default:
		return false
	}
}

// Engine validates and executes moves against room state. All failures
// leave the state untouched.
type Engine struct {
	violations *Violations
	rng        *rand.Rand
}

func NewEngine(v *Violations) *Engine {
	return NewEngineWithRand(v, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewEngineWithRand(v *Violations, rng *rand.Rand) *Engine {
	if v == nil {
		v = NewViolations()
	}
	return &Engine{violations: v, rng: rng}
}

func (e *Engine) Violations() *Violations {
	return e.violations
}

// Join seats the second player and moves the room to the dealer phase.
func (e *Engine) Join(st *domain.GameState, playerID string) error {
	if st.Phase != domain.PhaseWaiting {
		return NewError(KindValidation, "room is not waiting for players")
	}
	if playerID == "" || playerID == st.Players[0] {
		return NewError(KindValidation, "invalid joining player")
	}
	if st.Players[1] != "" {
		return NewError(KindValidation, "room is full")
	}
	st.Players[1] = playerID
	st.Phase = domain.PhaseDealerShuffle
	return nil
}

// ShuffleAndDeal shuffles a fresh deck and deals round 1: twelve cards to
// each hand and four face-up to the table.
func (e *Engine) ShuffleAndDeal(st *domain.GameState) error {
	if st.Phase != domain.PhaseDealerShuffle {
		return NewError(KindValidation, "room is not in the dealer phase")
	}

	deck := domain.NewDeck()
	e.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	st.Deck = deck
	st.ShuffleComplete = true
	st.CardSelectionComplete = true

	e.dealRound(st)
	st.TableCards = append(st.TableCards, st.Deck[:tableDeal]...)
	st.Deck = st.Deck[tableDeal:]

	st.DealingComplete = true
	st.GameStarted = true
	st.RoundNumber = 1
	st.Phase = domain.PhaseRound1
	st.CurrentTurn = 1
	return nil
}

func (e *Engine) dealRound(st *domain.GameState) {
	for p := 0; p < 2; p++ {
		st.Hands[p] = append(st.Hands[p], st.Deck[:handSize]...)
		st.Deck = st.Deck[handSize:]
	}
}

// Apply validates and executes one player action, mutating st on success
// only. It returns whether the action ended the acting player's turn.
func (e *Engine) Apply(st *domain.GameState, req ActionRequest) (bool, error) {
	if st.Phase != domain.PhaseRound1 && st.Phase != domain.PhaseRound2 {
		return false, NewError(KindValidation, fmt.Sprintf("no moves accepted in phase %q", st.Phase))
	}

	player := st.PlayerNumber(req.PlayerID)
	if player == 0 {
		return false, NewError(KindValidation, "player is not seated in this room")
	}
	if player != st.CurrentTurn {
		n := e.violations.Record(st.RoomID, req.PlayerID)
		return false, NewError(KindNotYourTurn, fmt.Sprintf("it is player %d's turn (violation %d)", st.CurrentTurn, n))
	}

	var err error
	switch req.Type {
	case domain.ActionCapture:
		err = e.applyCapture(st, player, req)
	case domain.ActionBuild:
		err = e.applyBuild(st, player, req)
	case domain.ActionTableBuild:
		err = e.applyTableBuild(st, player, req)
	case domain.ActionTrail:
		err = e.applyTrail(st, player, req)
	default:
		err = NewError(KindValidation, fmt.Sprintf("unknown action type %q", req.Type))
	}
	if err != nil {
		return false, err
	}

	ends := EndsTurn(req.Type)
	if ends {
		st.CurrentTurn = 3 - st.CurrentTurn
		e.advanceRound(st)
	}
	return ends, nil
}

// advanceRound deals round 2 or finishes the game once both hands are empty.
func (e *Engine) advanceRound(st *domain.GameState) {
	if len(st.Hands[0]) != 0 || len(st.Hands[1]) != 0 {
		return
	}

	if st.Phase == domain.PhaseRound1 {
		e.dealRound(st)
		st.RoundNumber = 2
		st.Phase = domain.PhaseRound2
		return
	}

	// Leftover loose cards and builds go to the last capturer.
	if st.LastCapturer != 0 {
		pile := &st.Captured[st.LastCapturer-1]
		*pile = append(*pile, st.TableCards...)
		for _, b := range st.Builds {
			*pile = append(*pile, b.Cards...)
		}
	}
	st.TableCards = nil
	st.Builds = nil

	s1 := CalculateScore(st.Captured[0])
	s2 := CalculateScore(st.Captured[1])
	b1, b2 := CalculateBonusScores(st.Captured[0], st.Captured[1])
	st.Scores[0] = s1 + b1
	st.Scores[1] = s2 + b2

	if w := DetermineWinner(st.Scores[0], st.Scores[1], len(st.Captured[0]), len(st.Captured[1])); w != 0 {
		st.Winner = &w
	}
	st.Phase = domain.PhaseFinished
	st.GameCompleted = true
}

func (e *Engine) applyCapture(st *domain.GameState, player int, req ActionRequest) error {
	handCard, err := findCard(st.Hands[player-1], req.CardID)
	if err != nil {
		return err
	}

	targets := make([]domain.Card, 0, len(req.TargetCardIDs))
	for _, id := range req.TargetCardIDs {
		c, ok := cardByID(st.TableCards, id)
		if !ok {
			return NewError(KindCardNotOnTable, fmt.Sprintf("card %s is not on the table", id))
		}
		targets = append(targets, c)
	}

	// Builds are captured by explicit id only. Two builds sharing a value
	// must not both be removed unless both ids are targeted.
	targetBuilds := make([]domain.Build, 0, len(req.TargetBuildIDs))
	for _, id := range req.TargetBuildIDs {
		b, ok := buildByID(st.Builds, id)
		if !ok {
			return NewError(KindValidation, fmt.Sprintf("build %s does not exist", id))
		}
		if !handCard.CanCountAs(b.Value) {
			return NewError(KindValidation, fmt.Sprintf("played card cannot capture a build of %d", b.Value))
		}
		targetBuilds = append(targetBuilds, b)
	}

	if len(targets) == 0 && len(targetBuilds) == 0 {
		return NewError(KindValidation, "capture must target at least one card or build")
	}

	// Loose targets either each match the played card directly, or as a
	// whole sum to a value the played card can count as.
	if len(targets) > 0 && !allMatch(handCard, targets) {
		matched := false
		for _, v := range handCard.Values() {
			if _, ok := domain.CanMakeValueWithAces(targets, v); ok {
				matched = true
				break
			}
		}
		if !matched {
			return NewError(KindSumMismatch, "target cards do not match the played card")
		}
	}

	captured, remaining, newTable := ExecuteCapture(handCard, targets, targetBuilds, st.Builds, st.TableCards)

	st.Hands[player-1] = removeCard(st.Hands[player-1], handCard.ID)
	st.TableCards = newTable
	st.Builds = remaining
	st.Captured[player-1] = append(st.Captured[player-1], captured...)
	st.LastCapturer = player
	return nil
}

// ExecuteCapture computes the capture outcome without touching any state.
// Remaining builds are resolved by identity, never by value.
func ExecuteCapture(handCard domain.Card, targetCards []domain.Card, targetBuilds []domain.Build, allBuilds []domain.Build, tableCards []domain.Card) (captured []domain.Card, remaining []domain.Build, newTable []domain.Card) {
	captured = append(captured, handCard)
	captured = append(captured, targetCards...)

	targetIDs := make(map[string]bool, len(targetBuilds))
	for _, b := range targetBuilds {
		targetIDs[b.ID] = true
		captured = append(captured, b.Cards...)
	}

	remaining = make([]domain.Build, 0, len(allBuilds))
	for _, b := range allBuilds {
		if !targetIDs[b.ID] {
			remaining = append(remaining, b)
		}
	}

	capturedCards := make(map[string]bool, len(targetCards))
	for _, c := range targetCards {
		capturedCards[c.ID] = true
	}
	newTable = make([]domain.Card, 0, len(tableCards))
	for _, c := range tableCards {
		if !capturedCards[c.ID] {
			newTable = append(newTable, c)
		}
	}
	return captured, remaining, newTable
}

// ValidateComponent checks that cards can sum to target under some Ace
// assignment and returns the chosen values per Ace.
func ValidateComponent(cards []domain.Card, target int) (map[string]int, error) {
	if len(cards) == 0 {
		return nil, NewError(KindEmptyComponent, "a build component needs at least one card")
	}
	assign, ok := domain.CanMakeValueWithAces(cards, target)
	if !ok {
		return nil, NewError(KindSumMismatch, fmt.Sprintf("component cannot sum to %d", target))
	}
	return assign, nil
}

// ValidateMultiComponentBuild checks a hand build: the player must hold a
// card that can later capture the declared value, every referenced card
// other than the played one must sit on the table, and each component must
// independently sum to the value. The card spent on the build never counts
// as the capturer; it is leaving the hand.
func ValidateMultiComponentBuild(handCard domain.Card, components [][]domain.Card, buildValue int, playerHand, tableCards []domain.Card) error {
	holdsCapturer := false
	for _, c := range playerHand {
		if c.ID == handCard.ID {
			continue
		}
		if c.CanCountAs(buildValue) {
			holdsCapturer = true
			break
		}
	}
	if !holdsCapturer {
		return NewError(KindNoCapturingCard, fmt.Sprintf("no card in hand can capture a build of %d", buildValue))
	}

	onTable := make(map[string]bool, len(tableCards))
	for _, c := range tableCards {
		onTable[c.ID] = true
	}
	for _, comp := range components {
		for _, c := range comp {
			if c.ID == handCard.ID {
				continue
			}
			if !onTable[c.ID] {
				return NewError(KindCardNotOnTable, fmt.Sprintf("card %s is not on the table", c.ID))
			}
		}
		if _, err := ValidateComponent(comp, buildValue); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyBuild(st *domain.GameState, player int, req ActionRequest) error {
	handCard, err := findCard(st.Hands[player-1], req.CardID)
	if err != nil {
		return err
	}
	if req.BuildValue < minBuildValue || req.BuildValue > maxBuildValue {
		return NewError(KindValidation, fmt.Sprintf("build value %d out of range", req.BuildValue))
	}
	if len(req.Components) == 0 {
		return NewError(KindEmptyComponent, "a build needs at least one component")
	}

	// Extending existing builds folds their cards into the new one; every
	// absorbed card must be referenced by some component.
	extended := make([]domain.Build, 0, len(req.TargetBuildIDs))
	extendedIDs := make(map[string]bool)
	lookup := make(map[string]domain.Card, len(st.TableCards))
	for _, c := range st.TableCards {
		lookup[c.ID] = c
	}
	lookup[handCard.ID] = handCard
	for _, id := range req.TargetBuildIDs {
		b, ok := buildByID(st.Builds, id)
		if !ok {
			return NewError(KindValidation, fmt.Sprintf("build %s does not exist", id))
		}
		extended = append(extended, b)
		extendedIDs[b.ID] = true
		for _, c := range b.Cards {
			lookup[c.ID] = c
		}
	}

	components := make([][]domain.Card, 0, len(req.Components))
	referenced := make(map[string]bool)
	for _, ids := range req.Components {
		comp := make([]domain.Card, 0, len(ids))
		for _, id := range ids {
			c, ok := lookup[id]
			if !ok {
				return NewError(KindCardNotOnTable, fmt.Sprintf("card %s is not on the table", id))
			}
			comp = append(comp, c)
			referenced[id] = true
		}
		components = append(components, comp)
	}

	// The played card has to end up inside the build. A component set that
	// never references it would drop the card out of play entirely.
	if !referenced[handCard.ID] {
		return NewError(KindValidation, "the played card must be part of the new build")
	}

	for _, b := range extended {
		for _, c := range b.Cards {
			if !referenced[c.ID] {
				return NewError(KindValidation, fmt.Sprintf("card %s of build %s left out of the new build", c.ID, b.ID))
			}
		}
	}

	tableVisible := append(append([]domain.Card{}, st.TableCards...), buildCards(extended)...)
	if err := ValidateMultiComponentBuild(handCard, components, req.BuildValue, st.Hands[player-1], tableVisible); err != nil {
		return err
	}

	newBuild := domain.Build{
		ID:    uuid.NewString(),
		Value: req.BuildValue,
		Owner: player,
	}
	seen := make(map[string]bool)
	for _, comp := range components {
		for _, c := range comp {
			if !seen[c.ID] {
				seen[c.ID] = true
				newBuild.Cards = append(newBuild.Cards, c)
			}
		}
	}

	st.Hands[player-1] = removeCard(st.Hands[player-1], handCard.ID)
	st.TableCards = removeCards(st.TableCards, seen)
	kept := make([]domain.Build, 0, len(st.Builds))
	for _, b := range st.Builds {
		if !extendedIDs[b.ID] {
			kept = append(kept, b)
		}
	}
	st.Builds = append(kept, newBuild)
	return nil
}

// applyTableBuild combines existing table cards into a build without
// spending a hand card. The move does not end the turn.
func (e *Engine) applyTableBuild(st *domain.GameState, player int, req ActionRequest) error {
	if len(req.TargetCardIDs) < 2 {
		return NewError(KindValidation, "a table build needs at least two table cards")
	}
	if req.BuildValue < minBuildValue || req.BuildValue > maxBuildValue {
		return NewError(KindValidation, fmt.Sprintf("build value %d out of range", req.BuildValue))
	}

	holdsCapturer := false
	for _, c := range st.Hands[player-1] {
		if c.CanCountAs(req.BuildValue) {
			holdsCapturer = true
			break
		}
	}
	if !holdsCapturer {
		return NewError(KindNoCapturingCard, fmt.Sprintf("no card in hand can capture a build of %d", req.BuildValue))
	}

	targets := make([]domain.Card, 0, len(req.TargetCardIDs))
	used := make(map[string]bool, len(req.TargetCardIDs))
	for _, id := range req.TargetCardIDs {
		c, ok := cardByID(st.TableCards, id)
		if !ok {
			return NewError(KindCardNotOnTable, fmt.Sprintf("card %s is not on the table", id))
		}
		targets = append(targets, c)
		used[id] = true
	}

	if _, err := ValidateComponent(targets, req.BuildValue); err != nil {
		return err
	}

	st.TableCards = removeCards(st.TableCards, used)
	st.Builds = append(st.Builds, domain.Build{
		ID:    uuid.NewString(),
		Cards: targets,
		Value: req.BuildValue,
		Owner: player,
	})
	return nil
}

func (e *Engine) applyTrail(st *domain.GameState, player int, req ActionRequest) error {
	handCard, err := findCard(st.Hands[player-1], req.CardID)
	if err != nil {
		return err
	}
	st.Hands[player-1] = removeCard(st.Hands[player-1], handCard.ID)
	st.TableCards = append(st.TableCards, handCard)
	return nil
}

func allMatch(handCard domain.Card, targets []domain.Card) bool {
	for _, t := range targets {
		ok := false
		for _, v := range t.Values() {
			if handCard.CanCountAs(v) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func buildCards(builds []domain.Build) []domain.Card {
	var out []domain.Card
	for _, b := range builds {
		out = append(out, b.Cards...)
	}
	return out
}

func findCard(hand []domain.Card, id string) (domain.Card, error) {
	if id == "" {
		return domain.Card{}, NewError(KindValidation, "no card declared")
	}
	if c, ok := cardByID(hand, id); ok {
		return c, nil
	}
	return domain.Card{}, NewError(KindValidation, fmt.Sprintf("card %s is not in hand", id))
}

func cardByID(cards []domain.Card, id string) (domain.Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Card{}, false
}

func buildByID(builds []domain.Build, id string) (domain.Build, bool) {
	for _, b := range builds {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Build{}, false
}

func removeCard(cards []domain.Card, id string) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func removeCards(cards []domain.Card, ids map[string]bool) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if !ids[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
