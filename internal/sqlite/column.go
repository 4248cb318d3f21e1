package sqlite

import (
	"fmt"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/sqlite/lib"

	"github.com/n1/sqlitewrap/internal/errs"
)

// ColumnType is the storage class of a value in the current row.
type ColumnType int32

const (
	TypeInteger ColumnType = lib.SQLITE_INTEGER
	TypeFloat   ColumnType = lib.SQLITE_FLOAT
	TypeText    ColumnType = lib.SQLITE_TEXT
	TypeBlob    ColumnType = lib.SQLITE_BLOB
	TypeNull    ColumnType = lib.SQLITE_NULL
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	case TypeNull:
		return "NULL"
	default:
		return fmt.Sprintf("ColumnType(%d)", int32(t))
	}
}

// ColumnCount returns the number of result columns, or 0 for an unusable Stmt.
func (s *Stmt) ColumnCount() int {
	if s.check() != nil {
		return 0
	}
	return int(lib.Xsqlite3_column_count(s.tls, s.h))
}

// column validates idx against the result width and converts it for the engine.
func (s *Stmt) column(idx int) (int32, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if idx < 0 || idx >= int(lib.Xsqlite3_column_count(s.tls, s.h)) {
		return 0, ErrIndexOutOfBounds
	}
	return int32(idx), nil
}

// ColumnName returns the name of result column idx.
func (s *Stmt) ColumnName(idx int) (string, error) {
	i, err := s.column(idx)
	if err != nil {
		return "", err
	}
	p := lib.Xsqlite3_column_name(s.tls, s.h, i)
	if p == 0 {
		return "", errs.ErrOutOfMemory
	}
	return libc.GoString(p), nil
}

// ColumnType returns the storage class of column idx in the current row.
func (s *Stmt) ColumnType(idx int) (ColumnType, error) {
	i, err := s.column(idx)
	if err != nil {
		return TypeNull, err
	}
	return ColumnType(lib.Xsqlite3_column_type(s.tls, s.h, i)), nil
}

// ColumnInt64 reads column idx as a 64-bit integer. NULL reads as 0.
func (s *Stmt) ColumnInt64(idx int) (int64, error) {
	i, err := s.column(idx)
	if err != nil {
		return 0, err
	}
	return int64(lib.Xsqlite3_column_int64(s.tls, s.h, i)), nil
}

// ColumnUint64 reads the bit pattern stored by BindUint64.
func (s *Stmt) ColumnUint64(idx int) (uint64, error) {
	v, err := s.ColumnInt64(idx)
	return uint64(v), err
}

// ColumnFloat64 reads column idx as a double. NULL reads as 0.
func (s *Stmt) ColumnFloat64(idx int) (float64, error) {
	i, err := s.column(idx)
	if err != nil {
		return 0, err
	}
	return lib.Xsqlite3_column_double(s.tls, s.h, i), nil
}

// ColumnRawText returns the text of column idx without copying. The slice
// aliases engine memory and is valid only until the next Step, Reset or
// Close. NULL returns nil; empty text returns an empty non-nil slice.
func (s *Stmt) ColumnRawText(idx int) ([]byte, error) {
	i, err := s.column(idx)
	if err != nil {
		return nil, err
	}
	p := lib.Xsqlite3_column_text(s.tls, s.h, i)
	if p == 0 {
		if lib.Xsqlite3_column_type(s.tls, s.h, i) == lib.SQLITE_NULL {
			return nil, nil
		}
		return nil, errs.ErrOutOfMemory
	}
	return borrow(p, int(lib.Xsqlite3_column_bytes(s.tls, s.h, i))), nil
}

// ColumnRawBlob returns the bytes of column idx without copying, under the
// same lifetime rules as ColumnRawText.
func (s *Stmt) ColumnRawBlob(idx int) ([]byte, error) {
	i, err := s.column(idx)
	if err != nil {
		return nil, err
	}
	p := lib.Xsqlite3_column_blob(s.tls, s.h, i)
	n := int(lib.Xsqlite3_column_bytes(s.tls, s.h, i))
	if p == 0 {
		switch {
		case lib.Xsqlite3_column_type(s.tls, s.h, i) == lib.SQLITE_NULL:
			return nil, nil
		case n == 0:
			// zero-length blobs come back as a null pointer
			return []byte{}, nil
		default:
			return nil, errs.ErrOutOfMemory
		}
	}
	return borrow(p, n), nil
}

// ColumnText copies column idx into a string. NULL reads as "".
func (s *Stmt) ColumnText(idx int) (string, error) {
	b, err := s.ColumnRawText(idx)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ColumnBytes copies column idx into a new slice. NULL reads as nil.
func (s *Stmt) ColumnBytes(idx int) ([]byte, error) {
	b, err := s.ColumnRawBlob(idx)
	if err != nil || b == nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// ColumnSlice reinterprets the blob in column idx as a sequence of T.
// T must be a fixed-size type without pointers. Trailing bytes that do not
// fill a whole element are dropped. NULL reads as nil.
func ColumnSlice[T any](s *Stmt, idx int) ([]T, error) {
	b, err := s.ColumnRawBlob(idx)
	if err != nil || b == nil {
		return nil, err
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return []T{}, nil
	}
	out := make([]T, len(b)/size)
	if len(out) > 0 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), len(out)*size), b)
	}
	return out, nil
}

// record keeps the first reader error for Err.
func (s *Stmt) record(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Err returns the first error hit by Int64, Float64, Text, RawText or
// SliceOf since the statement was prepared or last Reset.
func (s *Stmt) Err() error { return s.err }

// Int64 is ColumnInt64 with the error deferred to Err.
func (s *Stmt) Int64(idx int) int64 {
	v, err := s.ColumnInt64(idx)
	s.record(err)
	return v
}

// Float64 is ColumnFloat64 with the error deferred to Err.
func (s *Stmt) Float64(idx int) float64 {
	v, err := s.ColumnFloat64(idx)
	s.record(err)
	return v
}

// Text is ColumnText with the error deferred to Err.
func (s *Stmt) Text(idx int) string {
	v, err := s.ColumnText(idx)
	s.record(err)
	return v
}

// RawText is ColumnRawText with the error deferred to Err.
func (s *Stmt) RawText(idx int) []byte {
	v, err := s.ColumnRawText(idx)
	s.record(err)
	return v
}

// SliceOf is ColumnSlice with the error deferred to s.Err.
func SliceOf[T any](s *Stmt, idx int) []T {
	v, err := ColumnSlice[T](s, idx)
	s.record(err)
	return v
}
