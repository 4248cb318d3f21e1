package sqlite

import (
	"errors"

	"modernc.org/libc"
	lib "modernc.org/sqlite/lib"

	"github.com/n1/sqlitewrap/internal/errs"
)

// Source tags every error that originated inside the engine.
const Source = errs.Source('s'<<24 | 'q'<<16 | 'l'<<8 | 't')

// Precondition failures raised without consulting the engine.
var (
	ErrNotOpen          = errs.New(errs.SourceLocal, 0, "sqlite: database is not open")
	ErrIndexOutOfBounds = errs.New(errs.SourceLocal, 0, "sqlite: column index out of bounds")
	ErrTrailingSQL      = errs.New(errs.SourceLocal, 0, "sqlite: unused trailing sql after statement")
	ErrEmptySQL         = errs.New(errs.SourceLocal, 0, "sqlite: sql contains no statement")
	ErrConnClosed       = errs.New(errs.SourceLocal, 0, "sqlite: statement outlived its connection")
	ErrUnsupportedType  = errs.New(errs.SourceLocal, 0, "sqlite: unsupported value type")
)

// codeArgs pairs a status code with the connection that produced it.
// db may be zero when no connection context exists.
type codeArgs struct {
	db uintptr
	rc ResultCode
}

// dbArgs derives the code from the connection's most recent failure,
// falling back to a generic error when the engine reports none.
func dbArgs(tls *libc.TLS, db uintptr) codeArgs {
	args := codeArgs{db: db, rc: ResultError}
	if db != 0 {
		if rc := ResultCode(lib.Xsqlite3_errcode(tls, db)); rc != ResultOK {
			args.rc = rc
		}
	}
	return args
}

// stmtArgs routes rc through the connection owning stmt.
func stmtArgs(tls *libc.TLS, stmt uintptr, rc ResultCode) codeArgs {
	return codeArgs{db: lib.Xsqlite3_db_handle(tls, stmt), rc: rc}
}

// newError translates an engine status into the unified error value.
// The connection's message is preferred since it carries statement
// context; the generic code text is the fallback.
func newError(tls *libc.TLS, args codeArgs) error {
	if args.rc.Primary() == ResultNoMem {
		return errs.ErrOutOfMemory
	}
	var msg string
	if args.db != 0 {
		if p := lib.Xsqlite3_errmsg(tls, args.db); p != 0 {
			msg = libc.GoString(p)
		}
	}
	if msg == "" {
		if p := lib.Xsqlite3_errstr(tls, int32(args.rc)); p != 0 {
			msg = libc.GoString(p)
		}
	}
	return errs.New(Source, int(args.rc), msg)
}

// ErrCode returns the engine status carried by err, ResultOK for nil and
// ResultError for errors that did not come from the engine.
func ErrCode(err error) ResultCode {
	if err == nil {
		return ResultOK
	}
	var e *errs.Error
	if errors.As(err, &e) && e.Source == Source {
		return ResultCode(e.Code)
	}
	if errors.Is(err, errs.ErrOutOfMemory) {
		return ResultNoMem
	}
	return ResultError
}
