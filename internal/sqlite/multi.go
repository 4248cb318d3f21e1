package sqlite

import (
	"fmt"
	"unsafe"
)

// Bind binds v to parameter idx, choosing the engine type from v's Go type:
// nil binds NULL, integers and bool bind INTEGER, floats bind REAL, string
// binds TEXT and []byte binds BLOB.
func (s *Stmt) Bind(idx int, v any) error {
	switch v := v.(type) {
	case nil:
		return s.BindNull(idx)
	case int64:
		return s.BindInt64(idx, v)
	case int:
		return s.BindInt64(idx, int64(v))
	case int32:
		return s.BindInt64(idx, int64(v))
	case uint32:
		return s.BindInt64(idx, int64(v))
	case uint64:
		return s.BindUint64(idx, v)
	case bool:
		var n int64
		if v {
			n = 1
		}
		return s.BindInt64(idx, n)
	case float64:
		return s.BindFloat64(idx, v)
	case float32:
		return s.BindFloat64(idx, float64(v))
	case string:
		return s.BindText(idx, v)
	case []byte:
		return s.BindBytes(idx, v)
	default:
		return fmt.Errorf("%w: %T at parameter %d", ErrUnsupportedType, v, idx)
	}
}

// BindMulti binds vals to consecutive parameters starting at start. It
// stops at the first failure; parameters after the failing one are left
// as they were.
func (s *Stmt) BindMulti(start int, vals ...any) error {
	for i, v := range vals {
		if err := s.Bind(start+i, v); err != nil {
			return err
		}
	}
	return nil
}

// BindSlice binds the raw memory of vals as a blob. T must be a fixed-size
// type without pointers. A nil slice binds NULL.
func BindSlice[T any](s *Stmt, idx int, vals []T) error {
	if vals == nil {
		return s.BindNull(idx)
	}
	var zero T
	n := len(vals) * int(unsafe.Sizeof(zero))
	if n == 0 {
		return s.BindBytes(idx, []byte{})
	}
	return s.BindBytes(idx, unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(vals))), n))
}

// ColumnMulti reads consecutive columns starting at start into the
// pointers in outs. Supported targets are *int64, *int, *uint64, *float64,
// *bool, *string and *[]byte. It stops at the first failure; targets from
// that point on are left untouched.
func (s *Stmt) ColumnMulti(start int, outs ...any) error {
	for i, out := range outs {
		if err := s.columnInto(start+i, out); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stmt) columnInto(idx int, out any) error {
	switch p := out.(type) {
	case *int64:
		v, err := s.ColumnInt64(idx)
		if err != nil {
			return err
		}
		*p = v
	case *int:
		v, err := s.ColumnInt64(idx)
		if err != nil {
			return err
		}
		*p = int(v)
	case *uint64:
		v, err := s.ColumnUint64(idx)
		if err != nil {
			return err
		}
		*p = v
	case *bool:
		v, err := s.ColumnInt64(idx)
		if err != nil {
			return err
		}
		*p = v != 0
	case *float64:
		v, err := s.ColumnFloat64(idx)
		if err != nil {
			return err
		}
		*p = v
	case *string:
		v, err := s.ColumnText(idx)
		if err != nil {
			return err
		}
		*p = v
	case *[]byte:
		v, err := s.ColumnBytes(idx)
		if err != nil {
			return err
		}
		*p = v
	default:
		return fmt.Errorf("%w: %T at column %d", ErrUnsupportedType, out, idx)
	}
	return nil
}
