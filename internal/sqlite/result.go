package sqlite

import (
	"fmt"

	lib "modernc.org/sqlite/lib"
)

// ResultCode is an engine status code.
//
// https://www.sqlite.org/rescode.html
type ResultCode int32

// Primary result codes.
const (
	ResultOK         ResultCode = lib.SQLITE_OK
	ResultError      ResultCode = lib.SQLITE_ERROR
	ResultInternal   ResultCode = lib.SQLITE_INTERNAL
	ResultPerm       ResultCode = lib.SQLITE_PERM
	ResultAbort      ResultCode = lib.SQLITE_ABORT
	ResultBusy       ResultCode = lib.SQLITE_BUSY
	ResultLocked     ResultCode = lib.SQLITE_LOCKED
	ResultNoMem      ResultCode = lib.SQLITE_NOMEM
	ResultReadOnly   ResultCode = lib.SQLITE_READONLY
	ResultInterrupt  ResultCode = lib.SQLITE_INTERRUPT
	ResultIOErr      ResultCode = lib.SQLITE_IOERR
	ResultCorrupt    ResultCode = lib.SQLITE_CORRUPT
	ResultNotFound   ResultCode = lib.SQLITE_NOTFOUND
	ResultFull       ResultCode = lib.SQLITE_FULL
	ResultCantOpen   ResultCode = lib.SQLITE_CANTOPEN
	ResultProtocol   ResultCode = lib.SQLITE_PROTOCOL
	ResultSchema     ResultCode = lib.SQLITE_SCHEMA
	ResultTooBig     ResultCode = lib.SQLITE_TOOBIG
	ResultConstraint ResultCode = lib.SQLITE_CONSTRAINT
	ResultMismatch   ResultCode = lib.SQLITE_MISMATCH
	ResultMisuse     ResultCode = lib.SQLITE_MISUSE
	ResultRange      ResultCode = lib.SQLITE_RANGE
	ResultNotADB     ResultCode = lib.SQLITE_NOTADB
	ResultNotice     ResultCode = lib.SQLITE_NOTICE
	ResultWarning    ResultCode = lib.SQLITE_WARNING
	ResultRow        ResultCode = lib.SQLITE_ROW
	ResultDone       ResultCode = lib.SQLITE_DONE
)

// Primary strips the extended bits.
func (r ResultCode) Primary() ResultCode {
	return r & 0xff
}

// IsSuccess reports whether r is OK, ROW or DONE.
func (r ResultCode) IsSuccess() bool {
	switch r.Primary() {
	case ResultOK, ResultRow, ResultDone:
		return true
	default:
		return false
	}
}

var resultNames = map[ResultCode]string{
	ResultOK:         "SQLITE_OK",
	ResultError:      "SQLITE_ERROR",
	ResultInternal:   "SQLITE_INTERNAL",
	ResultPerm:       "SQLITE_PERM",
	ResultAbort:      "SQLITE_ABORT",
	ResultBusy:       "SQLITE_BUSY",
	ResultLocked:     "SQLITE_LOCKED",
	ResultNoMem:      "SQLITE_NOMEM",
	ResultReadOnly:   "SQLITE_READONLY",
	ResultInterrupt:  "SQLITE_INTERRUPT",
	ResultIOErr:      "SQLITE_IOERR",
	ResultCorrupt:    "SQLITE_CORRUPT",
	ResultNotFound:   "SQLITE_NOTFOUND",
	ResultFull:       "SQLITE_FULL",
	ResultCantOpen:   "SQLITE_CANTOPEN",
	ResultProtocol:   "SQLITE_PROTOCOL",
	ResultSchema:     "SQLITE_SCHEMA",
	ResultTooBig:     "SQLITE_TOOBIG",
	ResultConstraint: "SQLITE_CONSTRAINT",
	ResultMismatch:   "SQLITE_MISMATCH",
	ResultMisuse:     "SQLITE_MISUSE",
	ResultRange:      "SQLITE_RANGE",
	ResultNotADB:     "SQLITE_NOTADB",
	ResultNotice:     "SQLITE_NOTICE",
	ResultWarning:    "SQLITE_WARNING",
	ResultRow:        "SQLITE_ROW",
	ResultDone:       "SQLITE_DONE",
}

// String returns the C constant name of the primary code.
func (r ResultCode) String() string {
	if name, ok := resultNames[r.Primary()]; ok {
		if r.Primary() != r {
			return fmt.Sprintf("%s(%d)", name, int32(r))
		}
		return name
	}
	return fmt.Sprintf("ResultCode(%d)", int32(r))
}
