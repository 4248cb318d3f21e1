// Package sqlite is a thin ownership layer over the SQLite C API.
//
// A Conn owns one database handle and a Stmt owns one prepared statement.
// Both are released exactly once, either explicitly through Close or when
// replaced by a later Open or Prepare. Every engine failure is returned as
// an *errs.Error tagged with Source and carrying the engine's result code
// and message; see ErrCode.
//
// Parameter and column indices are zero-based. Typical use:
//
//	var conn sqlite.Conn
//	if err := conn.Open(path); err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	var stmt sqlite.Stmt
//	defer stmt.Close()
//	if err := conn.Prepare("SELECT a, b FROM t WHERE id = ?", &stmt); err != nil {
//		return err
//	}
//	if err := stmt.BindInt64(0, id); err != nil {
//		return err
//	}
//	for {
//		row, err := stmt.Step()
//		if err != nil || !row {
//			return err
//		}
//		var a int64
//		var b string
//		if err := stmt.ColumnMulti(0, &a, &b); err != nil {
//			return err
//		}
//	}
//
// The engine is initialized on first Open. Neither Conn nor Stmt may be
// used from more than one goroutine at a time.
package sqlite
