package largecollections

// ChangeAction classifies a fine-grained change event published by an
// Observable source, per spec §6.2.
type ChangeAction int

const (
	// ActionAdd indicates one or more contiguous elements were inserted.
	ActionAdd ChangeAction = iota
	// ActionRemove indicates one or more contiguous elements were removed.
	ActionRemove
	// ActionReplace indicates an element at Index was overwritten in place.
	ActionReplace
	// ActionClear indicates the entire source was emptied.
	ActionClear
	// ActionReset indicates a change too broad to describe incrementally;
	// subscribers must treat their view of the source as entirely stale.
	ActionReset
	// ActionRangeAdd indicates a bulk append of Count elements starting at
	// Index, emitted instead of Count individual ActionAdd events.
	ActionRangeAdd
)

// String renders a ChangeAction for logging and test failure messages.
func (a ChangeAction) String() string {
	switch a {
	case ActionAdd:
		return "Add"
	case ActionRemove:
		return "Remove"
	case ActionReplace:
		return "Replace"
	case ActionClear:
		return "Clear"
	case ActionReset:
		return "Reset"
	case ActionRangeAdd:
		return "RangeAdd"
	default:
		return "Unknown"
	}
}

// Change is the fine-grained typed change event carried on an Observable's
// typed-change channel. OldItem is only meaningful for ActionReplace.
type Change[T any] struct {
	Action  ChangeAction
	Index   uint64
	Count   uint64
	Item    T
	OldItem T
}

// Unsubscribe cancels a prior subscription. Calling it more than once is a
// no-op.
type Unsubscribe func()

// Observable is the read-only indexable sequence contract a Filtered/Sorted
// View consumes (spec §6.2). Implementations publish three independent
// notification streams instead of a single multicast delegate, per the
// redesign note in spec §9:
//
//   - OnChanged: a coarse "collection changed" signal, no payload.
//   - OnPropertyChanged: fires with the name of the property that changed
//     (conventionally "Count" after a length-affecting mutation).
//   - OnItemChanged: the fine-grained typed Change[T] event.
//
// Delivery is synchronous, on the mutating goroutine, exactly as in the
// source design: a subscriber callback that blocks will block the mutator.
type Observable[T any] interface {
	Len() uint64
	Get(i uint64) (T, error)

	OnChanged(func()) Unsubscribe
	OnPropertyChanged(func(property string)) Unsubscribe
	OnItemChanged(func(Change[T])) Unsubscribe
}
