package view

// Predicate reports whether an element belongs in a View. A nil
// Predicate[T] is the identity predicate: every element belongs (see
// doc.go on why nil plays that role instead of a distinct type).
type Predicate[T any] func(item T) bool

// Comparator imposes a strict weak order for a View's sort step, in the
// same sign convention as fastsort.Comparator: negative if a sorts before
// b, zero if equivalent, positive if a sorts after b. A nil Comparator[T]
// is the identity comparator: no sorting is performed.
type Comparator[T any] func(a, b T) int
