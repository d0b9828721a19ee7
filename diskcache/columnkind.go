package diskcache

import (
	"fmt"

	lc "github.com/dreamware/largecollections"
)

// ColumnKind tags the SQL column type backing a key or value, replacing
// the source design's dynamic type-dispatch on the element's CLR type
// (spec §9) with an explicit enum resolved once, at construction time.
type ColumnKind int

const (
	// KindInteger backs a Go int64 as SQLite's INTEGER affinity.
	KindInteger ColumnKind = iota
	// KindText backs a Go string as SQLite's TEXT affinity.
	KindText
	// KindBlob backs a Go []byte as SQLite's BLOB affinity; also used for
	// any custom type that round-trips through a Serializer/Deserializer.
	KindBlob
	// KindReal backs a Go float64 as SQLite's REAL affinity. Per spec §9's
	// open question, KindReal is valid for values but deliberately not
	// offered for keys — preserved as an intentional asymmetry.
	KindReal
)

// sqlType returns the literal SQL column type for k, as declared in
// CREATE TABLE (spec §6.1: "KEY_TYPE and VALUE_TYPE are literal
// INTEGER|TEXT|BLOB|REAL").
func (k ColumnKind) sqlType() (string, error) {
	switch k {
	case KindInteger:
		return "INTEGER", nil
	case KindText:
		return "TEXT", nil
	case KindBlob:
		return "BLOB", nil
	case KindReal:
		return "REAL", nil
	default:
		return "", fmt.Errorf("diskcache: unknown column kind %d: %w", k, lc.ErrInvalidConfiguration)
	}
}

// validateKey enforces the bit-level key constraints of spec §4.3: blob
// keys and string keys must be non-empty and no longer than
// lc.MaxItemLength; integer keys have no length constraint.
func validateKey(kind ColumnKind, key any) error {
	switch kind {
	case KindInteger:
		if _, ok := key.(int64); !ok {
			return fmt.Errorf("diskcache: integer key must be int64, got %T: %w", key, lc.ErrInvalidArgument)
		}
		return nil
	case KindText:
		s, ok := key.(string)
		if !ok {
			return fmt.Errorf("diskcache: text key must be string, got %T: %w", key, lc.ErrInvalidArgument)
		}
		if len(s) == 0 || len(s) > lc.MaxItemLength {
			return fmt.Errorf("diskcache: text key length %d out of [1, %d]: %w", len(s), lc.MaxItemLength, lc.ErrInvalidArgument)
		}
		return nil
	case KindBlob:
		b, ok := key.([]byte)
		if !ok {
			return fmt.Errorf("diskcache: blob key must be []byte, got %T: %w", key, lc.ErrInvalidArgument)
		}
		if len(b) == 0 || len(b) > lc.MaxItemLength {
			return fmt.Errorf("diskcache: blob key length %d out of [1, %d]: %w", len(b), lc.MaxItemLength, lc.ErrInvalidArgument)
		}
		return nil
	default:
		return fmt.Errorf("diskcache: real keys are not supported: %w", lc.ErrInvalidConfiguration)
	}
}

// validateValue enforces the length bound on values that carry one (blob,
// text); absent values are represented by a nil any and are always valid.
func validateValue(kind ColumnKind, value any) error {
	if value == nil {
		return nil
	}
	switch kind {
	case KindText:
		if s, ok := value.(string); ok && len(s) > lc.MaxItemLength {
			return fmt.Errorf("diskcache: text value length %d exceeds %d: %w", len(s), lc.MaxItemLength, lc.ErrInvalidArgument)
		}
	case KindBlob:
		if b, ok := value.([]byte); ok && len(b) > lc.MaxItemLength {
			return fmt.Errorf("diskcache: blob value length %d exceeds %d: %w", len(b), lc.MaxItemLength, lc.ErrInvalidArgument)
		}
	}
	return nil
}
