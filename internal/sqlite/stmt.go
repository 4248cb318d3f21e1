package sqlite

import (
	"modernc.org/libc"
	lib "modernc.org/sqlite/lib"
)

// Stmt owns at most one prepared statement. The zero value is empty and
// is populated by Conn.Prepare.
//
// Parameter and column indices are zero-based throughout.
type Stmt struct {
	tls   *libc.TLS
	h     uintptr
	conn  *Conn
	gen   uint64
	query string

	done   bool  // last Step returned no row; cleared by Reset
	failed bool  // last Step failed; Reset echoes that failure
	err    error // first error seen by the convenience readers
}

func (s *Stmt) attach(c *Conn, h uintptr, query string) {
	s.tls = libc.NewTLS()
	s.h = h
	s.conn, s.gen = c, c.gen
	s.query = query
	s.done, s.failed, s.err = false, false, nil
}

// Close finalizes the statement. It is a no-op on an empty Stmt and may
// be called after the owning Conn has closed. Errors left over from the
// last Step are not reported again.
func (s *Stmt) Close() error {
	if s.h == 0 {
		return nil
	}
	lib.Xsqlite3_finalize(s.tls, s.h)
	s.tls.Close()
	*s = Stmt{}
	return nil
}

// IsOpen reports whether s holds a prepared statement.
func (s *Stmt) IsOpen() bool { return s.h != 0 }

// SQL returns the text s was prepared from.
func (s *Stmt) SQL() string { return s.query }

// check verifies s is prepared and its connection is still the one it
// was prepared on.
func (s *Stmt) check() error {
	if s.h == 0 {
		return ErrNotOpen
	}
	if s.conn == nil || s.conn.db == 0 || s.conn.gen != s.gen {
		return ErrConnClosed
	}
	return nil
}

func (s *Stmt) fail(rc ResultCode) error {
	return newError(s.tls, stmtArgs(s.tls, s.h, rc))
}

// Step advances to the next row. It returns true while a row is available
// and false once the statement has run to completion; further calls keep
// returning false until Reset.
func (s *Stmt) Step() (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	if s.done {
		return false, nil
	}
	switch rc := ResultCode(lib.Xsqlite3_step(s.tls, s.h)); rc.Primary() {
	case ResultRow:
		return true, nil
	case ResultDone:
		s.done = true
		return false, nil
	default:
		s.failed = true
		return false, s.fail(rc)
	}
}

// Reset rewinds s so it can be stepped again. Bindings are kept and the
// sticky reader error is cleared.
func (s *Stmt) Reset() error {
	if err := s.check(); err != nil {
		return err
	}
	failed := s.failed
	s.done, s.failed, s.err = false, false, nil
	if rc := ResultCode(lib.Xsqlite3_reset(s.tls, s.h)); rc != ResultOK && !failed {
		return s.fail(rc)
	}
	return nil
}

// ClearBindings sets every parameter back to NULL.
func (s *Stmt) ClearBindings() error {
	if err := s.check(); err != nil {
		return err
	}
	if rc := ResultCode(lib.Xsqlite3_clear_bindings(s.tls, s.h)); rc != ResultOK {
		return s.fail(rc)
	}
	return nil
}

// BindCount returns the number of parameters, or 0 for an unusable Stmt.
func (s *Stmt) BindCount() int {
	if s.check() != nil {
		return 0
	}
	return int(lib.Xsqlite3_bind_parameter_count(s.tls, s.h))
}

func (s *Stmt) bindResult(rc int32) error {
	if ResultCode(rc) != ResultOK {
		return s.fail(ResultCode(rc))
	}
	return nil
}

// BindNull binds NULL to parameter idx.
func (s *Stmt) BindNull(idx int) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.bindResult(lib.Xsqlite3_bind_null(s.tls, s.h, int32(idx+1)))
}

// BindInt64 binds a 64-bit integer to parameter idx.
func (s *Stmt) BindInt64(idx int, v int64) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.bindResult(lib.Xsqlite3_bind_int64(s.tls, s.h, int32(idx+1), v))
}

// BindUint64 stores v's bit pattern as a signed integer. Values above
// math.MaxInt64 read back as negative through ColumnInt64 but survive a
// ColumnUint64 round trip.
func (s *Stmt) BindUint64(idx int, v uint64) error {
	return s.BindInt64(idx, int64(v))
}

// BindFloat64 binds a double to parameter idx.
func (s *Stmt) BindFloat64(idx int, v float64) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.bindResult(lib.Xsqlite3_bind_double(s.tls, s.h, int32(idx+1), v))
}

// BindText binds v as text. The engine keeps its own copy, so v may be
// reused as soon as the call returns.
func (s *Stmt) BindText(idx int, v string) error {
	if err := s.check(); err != nil {
		return err
	}
	if v == "" {
		return s.bindResult(lib.Xsqlite3_bind_text(s.tls, s.h, int32(idx+1), emptyCString, 0, sqliteStatic))
	}
	p, err := cCopyString(s.tls, v)
	if err != nil {
		return err
	}
	// The engine runs the destructor even when binding fails.
	return s.bindResult(lib.Xsqlite3_bind_text(s.tls, s.h, int32(idx+1), p, int32(len(v)), freeFuncPtr))
}

// BindBytes binds v as a blob. A nil slice binds NULL; an empty non-nil
// slice binds a zero-length blob.
func (s *Stmt) BindBytes(idx int, v []byte) error {
	if err := s.check(); err != nil {
		return err
	}
	if v == nil {
		return s.bindResult(lib.Xsqlite3_bind_null(s.tls, s.h, int32(idx+1)))
	}
	if len(v) == 0 {
		return s.bindResult(lib.Xsqlite3_bind_blob(s.tls, s.h, int32(idx+1), emptyCString, 0, sqliteStatic))
	}
	p, err := cCopy(s.tls, v)
	if err != nil {
		return err
	}
	return s.bindResult(lib.Xsqlite3_bind_blob(s.tls, s.h, int32(idx+1), p, int32(len(v)), freeFuncPtr))
}
