package sqlite

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/sqlite/lib"

	"github.com/n1/sqlitewrap/internal/log"
)

// durabilityPragmas run after every read-write open.
var durabilityPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = FULL",
}

var (
	mainDBName = mustCString("main")
	// generations numbers every successful open so statements can tell
	// whether the handle they were prepared on is still the current one.
	generations atomic.Uint64
)

// Conn owns at most one open database handle.
//
// The zero value is a closed Conn. A Conn is not safe for concurrent use;
// callers that share one across goroutines must serialize access.
type Conn struct {
	tls  *libc.TLS
	db   uintptr
	gen  uint64
	path string
}

// Open opens path read-write, creating the file if missing.
func (c *Conn) Open(path string) error {
	return c.OpenV2(path, OpenDefault, "")
}

// OpenWithFlags opens path with flags and the default VFS.
func (c *Conn) OpenWithFlags(path string, flags OpenFlags) error {
	return c.OpenV2(path, flags, "")
}

// OpenV2 opens path with flags on the named VFS ("" for the default one).
// Any handle already held is closed first. Read-write opens switch the
// database to WAL journaling with full synchronous flushing, and a failure
// there fails the open.
//
// A read-only open that fails with ResultCantOpen while a "-wal" sidecar
// sits next to path is retried once read-write, which lets the engine
// recover the interrupted write, and then reopened with the original flags.
// If that succeeds the original failure is dropped.
func (c *Conn) OpenV2(path string, flags OpenFlags, vfs string) error {
	err := c.open(path, flags, vfs)
	if err == nil || !recoverable(err, path, flags) {
		return err
	}

	log.Warn().Err(err).Str("path", path).Msg("open failed with write-ahead log present, retrying read-write")
	if rerr := c.open(path, flags&^OpenReadOnly|OpenReadWrite, vfs); rerr != nil {
		log.Warn().Err(rerr).Str("path", path).Msg("read-write recovery open failed")
		return err
	}
	if rerr := c.open(path, flags, vfs); rerr != nil {
		log.Warn().Err(rerr).Str("path", path).Msg("reopen after recovery failed")
		return err
	}
	log.Info().Str("path", path).Stringer("flags", flags).Msg("database recovered by read-write open")
	return nil
}

func recoverable(err error, path string, flags OpenFlags) bool {
	if ErrCode(err).Primary() != ResultCantOpen || flags&OpenReadWrite != 0 {
		return false
	}
	return walSidecarExists(path)
}

func walSidecarExists(path string) bool {
	_, err := os.Stat(path + "-wal")
	return err == nil
}

func (c *Conn) open(path string, flags OpenFlags, vfs string) error {
	if err := initLibrary(); err != nil {
		return err
	}
	c.Close()

	tls := libc.NewTLS()
	db, err := openHandle(tls, path, flags, vfs)
	if err != nil {
		tls.Close()
		return err
	}
	c.tls, c.db, c.path = tls, db, path
	c.gen = generations.Add(1)

	if flags&OpenReadWrite != 0 {
		if err := c.ExecList(durabilityPragmas); err != nil {
			c.Close()
			return err
		}
	}
	return nil
}

func openHandle(tls *libc.TLS, path string, flags OpenFlags, vfs string) (uintptr, error) {
	cpath, err := cString(path)
	if err != nil {
		return 0, err
	}
	defer libc.Xfree(tls, cpath)

	var cvfs uintptr
	if vfs != "" {
		if cvfs, err = cString(vfs); err != nil {
			return 0, err
		}
		defer libc.Xfree(tls, cvfs)
	}

	ppDb, err := malloc(tls, ptrSize)
	if err != nil {
		return 0, err
	}
	defer libc.Xfree(tls, ppDb)

	rc := ResultCode(lib.Xsqlite3_open_v2(tls, cpath, ppDb, int32(flags), cvfs))
	db := *(*uintptr)(unsafe.Pointer(ppDb))
	if rc != ResultOK {
		// The engine may hand back a handle just so the message can be read.
		err := newError(tls, codeArgs{db: db, rc: rc})
		if db != 0 {
			lib.Xsqlite3_close_v2(tls, db)
		}
		return 0, err
	}
	return db, nil
}

// Close releases the handle. It is a no-op on a closed Conn.
//
// Statements prepared on c become unusable (ErrConnClosed) but must still
// be closed; the engine frees the handle once the last one is finalized.
func (c *Conn) Close() error {
	if c.db == 0 {
		return nil
	}
	var err error
	if rc := ResultCode(lib.Xsqlite3_close_v2(c.tls, c.db)); rc != ResultOK {
		err = newError(c.tls, codeArgs{rc: rc})
	}
	c.tls.Close()
	c.tls, c.db, c.path = nil, 0, ""
	return err
}

// IsOpen reports whether c holds a handle.
func (c *Conn) IsOpen() bool { return c.db != 0 }

// Handle returns the native handle, or 0 when closed.
func (c *Conn) Handle() uintptr { return c.db }

// Path returns the path c was opened with.
func (c *Conn) Path() string { return c.path }

// IsReadOnly asks the engine whether the main database accepts writes.
// This reflects what the engine actually granted, which can be narrower
// than the flags requested. A closed Conn reports false.
func (c *Conn) IsReadOnly() bool {
	if c.db == 0 {
		return false
	}
	return lib.Xsqlite3_db_readonly(c.tls, c.db, mainDBName) == 1
}

// LastInsertRowID returns the rowid of the most recent successful INSERT.
func (c *Conn) LastInsertRowID() int64 {
	if c.db == 0 {
		return 0
	}
	return int64(lib.Xsqlite3_last_insert_rowid(c.tls, c.db))
}

// Changes returns the number of rows changed by the most recent statement.
func (c *Conn) Changes() int {
	if c.db == 0 {
		return 0
	}
	return int(lib.Xsqlite3_changes(c.tls, c.db))
}

// Prepare compiles exactly one statement from query into stmt, closing
// whatever stmt held before. Text left after the first statement is an
// error (ErrTrailingSQL) unless it is only whitespace or comments.
func (c *Conn) Prepare(query string, stmt *Stmt) error {
	if c.db == 0 {
		return ErrNotOpen
	}
	stmt.Close()

	h, rest, err := c.prepare(query)
	if err != nil {
		return err
	}
	if h == 0 {
		return ErrEmptySQL
	}
	if strings.TrimSpace(rest) != "" {
		extra, _, err := c.prepare(rest)
		if extra != 0 {
			lib.Xsqlite3_finalize(c.tls, extra)
		}
		if err != nil || extra != 0 {
			lib.Xsqlite3_finalize(c.tls, h)
			return fmt.Errorf("%w: %q", ErrTrailingSQL, strings.TrimSpace(rest))
		}
	}

	stmt.attach(c, h, query)
	return nil
}

// prepare compiles the first statement of query and returns the text the
// engine did not consume.
func (c *Conn) prepare(query string) (uintptr, string, error) {
	cquery, err := cString(query)
	if err != nil {
		return 0, "", err
	}
	defer libc.Xfree(c.tls, cquery)
	stmtPtr, err := malloc(c.tls, ptrSize)
	if err != nil {
		return 0, "", err
	}
	defer libc.Xfree(c.tls, stmtPtr)
	tailPtr, err := malloc(c.tls, ptrSize)
	if err != nil {
		return 0, "", err
	}
	defer libc.Xfree(c.tls, tailPtr)

	rc := ResultCode(lib.Xsqlite3_prepare_v3(c.tls, c.db, cquery, int32(len(query)), 0, stmtPtr, tailPtr))
	if rc != ResultOK {
		return 0, "", newError(c.tls, codeArgs{db: c.db, rc: rc})
	}
	h := *(*uintptr)(unsafe.Pointer(stmtPtr))
	var rest string
	if tail := *(*uintptr)(unsafe.Pointer(tailPtr)); tail != 0 {
		if off := int(tail - cquery); off >= 0 && off < len(query) {
			rest = query[off:]
		}
	}
	return h, rest, nil
}

// Exec prepares query and steps it to completion, discarding any rows.
func (c *Conn) Exec(query string) error {
	var stmt Stmt
	defer stmt.Close()

	if err := c.Prepare(query, &stmt); err != nil {
		return err
	}
	for {
		more, err := stmt.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// ExecList runs each query in order and stops at the first failure.
func (c *Conn) ExecList(queries []string) error {
	for _, q := range queries {
		if err := c.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// ExecAll is the variadic form of ExecList.
func (c *Conn) ExecAll(queries ...string) error {
	return c.ExecList(queries)
}
