package core

import (
	"context"
	"sync"
	"time"

	"inventoryclient/internal/api"
	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
	"inventoryclient/pkg/signal"
)

// MoveResult reports the per-record outcomes of one bulk move. The operation
// is atomic per record, never across the selection: successful outcomes are
// applied to the graph even when others failed.
type MoveResult struct {
	Outcomes     []domain.BulkOutcome
	SuccessCount int
	ErrorCount   int
}

// PartialFailure returns the structured mixed-outcome error when some records
// succeeded and some failed, nil otherwise.
func (r *MoveResult) PartialFailure() *domain.PartialBulkFailure {
	if r.ErrorCount == 0 || r.SuccessCount == 0 {
		return nil
	}
	return &domain.PartialBulkFailure{
		Outcomes:     r.Outcomes,
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
	}
}

// MoveStore orchestrates relocating records into a different container or
// grid location. It is a three-state machine (idle, moving, move in flight):
// SetIsMoving(true) captures a selection, SetTargetContainer may be called
// repeatedly while the user browses destinations, and MoveSelected issues
// one bulk request — re-entrant invocation while one is outstanding is
// rejected.
type MoveStore struct {
	client  api.Client
	factory *Factory
	search  *Search
	log     *logging.Logger
	metrics MetricsRecorder

	mu       sync.Mutex
	isMoving bool
	selected []domain.Record
	target   *domain.Container
	inFlight bool

	// Changed fires after every move-state mutation.
	Changed signal.Signal[struct{}]
}

// NewMoveStore constructs a move store bound to the originating search.
func NewMoveStore(client api.Client, factory *Factory, search *Search, log *logging.Logger, metrics MetricsRecorder) *MoveStore {
	if log == nil {
		log = logging.Nop()
	}
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	return &MoveStore{client: client, factory: factory, search: search, log: log, metrics: metrics}
}

// IsMoving reports whether a move session is active.
func (m *MoveStore) IsMoving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isMoving
}

// SetIsMoving enters or leaves move mode. Leaving clears the captured
// selection and target.
func (m *MoveStore) SetIsMoving(moving bool) {
	m.mu.Lock()
	m.isMoving = moving
	if !moving {
		m.selected = nil
		m.target = nil
	}
	m.mu.Unlock()
	m.Changed.Emit(struct{}{})
}

// SetSelectedResults captures the records to relocate.
func (m *MoveStore) SetSelectedResults(records []domain.Record) {
	m.mu.Lock()
	m.selected = append([]domain.Record(nil), records...)
	m.mu.Unlock()
	m.Changed.Emit(struct{}{})
}

// SelectedResults returns the captured selection.
func (m *MoveStore) SelectedResults() []domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Record(nil), m.selected...)
}

// TargetContainer returns the destination chosen so far, or nil.
func (m *MoveStore) TargetContainer() *domain.Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// SetTargetContainer records the destination the user is browsing. Before the
// container's locations are presented, any location whose content is among
// the records being moved out is cleared: the slot an item conceptually
// vacates is a valid drop target, not a disabled one.
func (m *MoveStore) SetTargetContainer(c *domain.Container) error {
	m.mu.Lock()
	if !m.isMoving {
		m.mu.Unlock()
		return &domain.ValidationError{Field: "isMoving", Reason: "not in move mode"}
	}
	m.target = c
	if c != nil {
		m.clearLocationsWithContentBeingMovedOut(c)
	}
	m.mu.Unlock()
	m.Changed.Emit(struct{}{})
	return nil
}

// clearLocationsWithContentBeingMovedOut empties every location of c holding
// one of the records being moved. Caller holds m.mu.
func (m *MoveStore) clearLocationsWithContentBeingMovedOut(c *domain.Container) {
	moving := make(map[string]struct{}, len(m.selected))
	for _, r := range m.selected {
		moving[r.Core().Key()] = struct{}{}
	}
	for _, loc := range c.Locations() {
		content := loc.Content()
		if content == nil {
			continue
		}
		if _, ok := moving[content.Core().Key()]; ok {
			loc.ClearContent()
			loc.SetSelected(false)
		}
	}
}

// MoveSelected issues one bulk move of the captured selection into the chosen
// target (container root, or the grid locations selected within it). Per
// successful record: the record is re-instantiated through the factory from
// the server's post-move payload, its previous location is cleared, the
// explicitly targeted location receives the new instance, and the buffered
// instance is swapped. Failed records keep their prior location and are
// reported in the result. Transport failure leaves all state untouched.
func (m *MoveStore) MoveSelected(ctx context.Context) (*MoveResult, error) {
	m.mu.Lock()
	if !m.isMoving {
		m.mu.Unlock()
		return nil, &domain.ValidationError{Field: "isMoving", Reason: "not in move mode"}
	}
	if m.inFlight {
		m.mu.Unlock()
		return nil, &domain.ValidationError{Field: "move", Reason: "a move is already in flight"}
	}
	if m.target == nil {
		m.mu.Unlock()
		return nil, &domain.ValidationError{Field: "targetContainer", Reason: "no destination chosen"}
	}
	if len(m.selected) == 0 {
		m.mu.Unlock()
		return nil, &domain.ValidationError{Field: "selectedResults", Reason: "nothing selected"}
	}
	targetGID, ok := m.target.Core().GlobalID()
	if !ok {
		m.mu.Unlock()
		return nil, &domain.ValidationError{Field: "targetContainer", Reason: "destination is unsaved"}
	}
	gids := make([]string, 0, len(m.selected))
	for _, r := range m.selected {
		gid, saved := r.Core().GlobalID()
		if !saved {
			m.mu.Unlock()
			return nil, &domain.ValidationError{Field: "selectedResults", Reason: "cannot move an unsaved record"}
		}
		gids = append(gids, string(gid))
	}
	var chosen []*domain.Location
	for _, loc := range m.target.Locations() {
		if loc.Selected() {
			chosen = append(chosen, loc)
		}
	}
	if len(chosen) > 0 && len(chosen) != len(gids) {
		m.mu.Unlock()
		return nil, &domain.ValidationError{Field: "locations", Reason: "selected locations do not match selected records"}
	}
	req := api.BulkMoveRequest{
		OperationType: "MOVE",
		Records:       gids,
		Destination:   api.DestinationPayload{ContainerGlobalID: string(targetGID)},
	}
	for _, loc := range chosen {
		req.Destination.Locations = append(req.Destination.Locations, api.LocationRequest{
			CoordX: loc.CoordX(),
			CoordY: loc.CoordY(),
		})
	}
	m.inFlight = true
	m.mu.Unlock()

	started := time.Now()
	resp, err := m.client.BulkMove(ctx, req)
	if err != nil {
		m.metrics.Observe(ctx, "move", false, time.Since(started))
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
		return nil, err
	}
	m.metrics.Observe(ctx, "move", true, time.Since(started))

	m.mu.Lock()
	result := &MoveResult{}
	for i, item := range resp.Results {
		if i >= len(gids) {
			break
		}
		gid := domain.GlobalID(gids[i])
		switch {
		case item.Error != nil:
			result.Outcomes = append(result.Outcomes, domain.BulkOutcome{GlobalID: gid, Err: item.Error})
			result.ErrorCount++
		case item.Record == nil:
			result.Outcomes = append(result.Outcomes, domain.BulkOutcome{
				GlobalID: gid,
				Err:      &domain.ParseError{Field: "results", Got: string(gid), Reason: "neither record nor error"},
			})
			result.ErrorCount++
		default:
			old, _ := m.factory.Lookup(gid)
			fresh, err := m.factory.Reinstantiate(*item.Record)
			if err != nil {
				result.Outcomes = append(result.Outcomes, domain.BulkOutcome{GlobalID: gid, Err: err})
				result.ErrorCount++
				continue
			}
			if old != nil {
				if prev := old.Core().ParentLocation(); prev != nil {
					prev.ClearContent()
				}
			}
			if i < len(chosen) {
				chosen[i].SetContent(fresh)
				chosen[i].SetSelected(false)
			}
			m.search.fetcher.ReplaceInstance(fresh)
			result.Outcomes = append(result.Outcomes, domain.BulkOutcome{GlobalID: gid, Record: fresh})
			result.SuccessCount++
		}
	}
	// A response shorter than the request leaves trailing records without an
	// outcome; surface those as parse failures rather than silence.
	for i := len(resp.Results); i < len(gids); i++ {
		result.Outcomes = append(result.Outcomes, domain.BulkOutcome{
			GlobalID: domain.GlobalID(gids[i]),
			Err:      &domain.ParseError{Field: "results", Got: gids[i], Reason: "no outcome returned"},
		})
		result.ErrorCount++
	}
	m.inFlight = false
	m.mu.Unlock()
	m.Changed.Emit(struct{}{})

	if err := m.search.Refresh(ctx); err != nil {
		m.log.Warn("post-move search refresh failed", "err", err)
	}
	return result, nil
}
