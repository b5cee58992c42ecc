package selection

import (
	"log/slog"
	"sync"

	"reach/internal/logging"
	"reach/internal/taxonomy"
)

// Store persists the selection. Save returns the state as written, with its
// lastUpdated stamp.
type Store interface {
	Load() State
	Save(State) (State, error)
	Clear() error
}

// Outcome is what listeners receive after each change.
type Outcome struct {
	State          State
	Capacity       int64
	CapacityTooLow bool
}

// Listener receives an Outcome after every recompute, category switch, title
// change, or reset. Listeners run while the controller is locked and must not
// call back into it.
type Listener func(Outcome)

// Phase is the controller state, derived from how much is selected.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseCategoryChosen
	PhaseSubCategoriesChosen
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseCategoryChosen:
		return "category_chosen"
	case PhaseSubCategoriesChosen:
		return "subcategories_chosen"
	case PhaseResolved:
		return "resolved"
	default:
		return "empty"
	}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLowCapacityThreshold overrides DefaultLowCapacityThreshold.
func WithLowCapacityThreshold(threshold int64) Option {
	return func(c *Controller) {
		if threshold > 0 {
			c.threshold = threshold
		}
	}
}

// WithListener registers a listener at construction.
func WithListener(fn Listener) Option {
	return func(c *Controller) {
		if fn != nil {
			c.listeners = append(c.listeners, fn)
		}
	}
}

// Controller is the only writer of the selection. Operations are serialized
// and run to completion before the next one starts.
type Controller struct {
	mu        sync.Mutex
	store     Store
	tree      *taxonomy.Tree
	state     State
	threshold int64
	resolved  bool
	listeners []Listener
	logger    *slog.Logger
}

// NewController restores the persisted selection from store. tree may be nil
// while the taxonomy is still loading; supply it later with SetTaxonomy.
func NewController(store Store, tree *taxonomy.Tree, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		tree:      tree,
		threshold: DefaultLowCapacityThreshold,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String(logging.FieldComponent, "selection"))
	c.state = store.Load().Clone()
	if c.reconcile() {
		c.settle()
	}
	c.resolved = c.tree != nil && len(c.state.Level1s) > 0 && len(c.state.Level2s) > 0
	return c
}

// State returns a copy of the current selection.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Outcome returns the current selection with its derived flags.
func (c *Controller) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome()
}

// Phase reports where the selection is in its lifecycle.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case len(c.state.Level1s) == 0:
		return PhaseEmpty
	case len(c.state.Level2s) == 0:
		return PhaseCategoryChosen
	case c.resolved:
		return PhaseResolved
	default:
		return PhaseSubCategoriesChosen
	}
}

// Taxonomy returns the tree the controller validates against.
func (c *Controller) Taxonomy() *taxonomy.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Subscribe adds a listener and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
	idx := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.listeners) {
			c.listeners[idx] = nil
		}
	}
}

// SetCategory switches the active category, or clears it when value is "".
// Lower levels and aggregates are cleared and the empty aggregate is saved
// immediately. Unknown categories are ignored.
func (c *Controller) SetCategory(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value != "" && !taxonomy.HasCategory(c.tree, value) {
		c.logger.Debug("ignoring unknown category", slog.String(logging.FieldCategory, value))
		return
	}
	if value == "" {
		c.state.Level1s = []string{}
	} else {
		c.state.Level1s = []string{value}
	}
	c.state.Level2s = []string{}
	c.state.Level3s = []string{}
	c.clearAggregates()
	c.resolved = false
	c.persist()
	c.emit()
}

// ToggleSubCategory adds l2 under the active category, or removes it along
// with every leaf that no remaining sub-category can reach.
func (c *Controller) ToggleSubCategory(l2 string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	category := c.state.Category()
	if category == "" {
		return
	}
	if contains(c.state.Level2s, l2) {
		remaining := without(c.state.Level2s, l2)
		c.state.Level3s = PruneOrphans(c.tree, category, l2, remaining, c.state.Level3s)
		c.state.Level2s = remaining
	} else {
		if !taxonomy.HasSubCategory(c.tree, category, l2) {
			c.logger.Debug("ignoring unknown sub-category", slog.String("sub_category", l2))
			return
		}
		c.state.Level2s = append(c.state.Level2s, l2)
	}
	c.recompute()
}

// ToggleLeaf adds or removes l3. Adding requires l3 to be a leaf of a
// selected sub-category; removing always succeeds. The sole leaf of a
// selected sub-category is re-added by the cascade.
func (c *Controller) ToggleLeaf(l3 string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if contains(c.state.Level3s, l3) {
		c.state.Level3s = without(c.state.Level3s, l3)
	} else {
		if !reachable(c.tree, c.state.Category(), c.state.Level2s, l3) {
			c.logger.Debug("ignoring unreachable leaf", slog.String("leaf", l3))
			return
		}
		c.state.Level3s = append(c.state.Level3s, l3)
	}
	c.recompute()
}

// SetCampaignTitle updates the title and saves it without recomputing.
func (c *Controller) SetCampaignTitle(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.CampaignTitle = value
	c.persist()
	c.emit()
}

// SetTaxonomy installs a (re)loaded taxonomy and recomputes against it.
// Restored values the tree cannot back are dropped first.
func (c *Controller) SetTaxonomy(tree *taxonomy.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tree = tree
	repaired := c.reconcile()
	if len(c.state.Level1s) == 0 && !repaired {
		return
	}
	c.settle()
}

// Reset abandons the flow: the stored selection is removed and an empty
// state is saved so every observer resets too.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		c.logger.Warn("clear selection failed", logging.Error(err))
	}
	c.state = Empty()
	c.resolved = false
	c.persist()
	c.emit()
}

func (c *Controller) recompute() {
	category := c.state.Category()
	if level3s, changed := Resolve(c.tree, category, c.state.Level2s, c.state.Level3s); changed {
		c.logger.Debug("cascade added implicit leaves",
			slog.Int("before", len(c.state.Level3s)),
			slog.Int("after", len(level3s)),
		)
		c.state.Level3s = level3s
	}

	res := Aggregate(c.tree, category, c.state.Level2s, c.state.Level3s)
	c.state.Count = res.Capacity
	c.state.Tags = res.Tags
	c.state.Metadata = res.Metadata
	c.resolved = c.tree != nil && len(c.state.Level2s) > 0

	if CapacityTooLow(res.Capacity, c.threshold) {
		c.logger.Info("selection below capacity threshold",
			slog.Int64(logging.FieldCapacity, res.Capacity),
			slog.Int64("threshold", c.threshold),
			slog.String(logging.FieldAlert, "low_capacity"),
		)
	}
	c.persist()
	c.emit()
}

// reconcile fits c.state to c.tree and reports whether anything was dropped.
func (c *Controller) reconcile() bool {
	if c.tree == nil {
		return false
	}
	state, changed := Reconcile(c.tree, c.state)
	if !changed {
		return false
	}
	c.logger.Warn("restored selection does not fit the taxonomy; dropping stale values",
		slog.Any("level1s", c.state.Level1s),
		slog.Any("level2s", c.state.Level2s),
		slog.Any("level3s", c.state.Level3s),
	)
	c.state = state
	return true
}

// settle recomputes a selection with a category, or saves the cleared
// aggregates of one without.
func (c *Controller) settle() {
	if len(c.state.Level1s) > 0 {
		c.recompute()
		return
	}
	c.clearAggregates()
	c.resolved = false
	c.persist()
	c.emit()
}

func (c *Controller) clearAggregates() {
	c.state.Tags = []string{}
	c.state.Count = 0
	c.state.Metadata = Metadata{}
}

func (c *Controller) persist() {
	saved, err := c.store.Save(c.state.Clone())
	if err != nil {
		c.logger.Warn("save selection failed", logging.Error(err))
		return
	}
	c.state.LastUpdated = saved.LastUpdated
}

func (c *Controller) outcome() Outcome {
	return Outcome{
		State:          c.state.Clone(),
		Capacity:       c.state.Count,
		CapacityTooLow: CapacityTooLow(c.state.Count, c.threshold),
	}
}

func (c *Controller) emit() {
	out := c.outcome()
	for _, fn := range c.listeners {
		if fn != nil {
			fn(out)
		}
	}
}
