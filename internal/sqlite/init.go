package sqlite

import (
	"fmt"

	"github.com/rs/zerolog"
	"modernc.org/libc"
	lib "modernc.org/sqlite/lib"

	"github.com/n1/sqlitewrap/internal/errs"
	"github.com/n1/sqlitewrap/internal/lazy"
	"github.com/n1/sqlitewrap/internal/log"
)

var library lazy.Init

// initLibrary installs the engine log hook and starts the engine. It runs
// once per process; a failed attempt is retried by the next caller.
func initLibrary() error {
	return library.Do(func() error {
		tls := libc.NewTLS()
		defer tls.Close()

		va := libc.NewVaList(cFuncPointer(engineLogCallback), uintptr(0))
		if va == 0 {
			return errs.ErrOutOfMemory
		}
		defer libc.Xfree(tls, va)

		if rc := ResultCode(lib.Xsqlite3_config(tls, lib.SQLITE_CONFIG_LOG, va)); rc != ResultOK {
			return fmt.Errorf("sqlite: install log hook: %w", newError(tls, codeArgs{rc: rc}))
		}
		if rc := ResultCode(lib.Xsqlite3_initialize(tls)); rc != ResultOK {
			return newError(tls, codeArgs{rc: rc})
		}
		log.Debug().Str("version", lib.SQLITE_VERSION).Msg("sqlite library initialized")
		return nil
	})
}

func engineLogCallback(tls *libc.TLS, _ uintptr, code int32, msg uintptr) {
	engineLog(ResultCode(code), libc.GoString(msg))
}

// engineLog forwards one engine diagnostic to the shared logger.
func engineLog(code ResultCode, msg string) {
	var ev *zerolog.Event
	switch code.Primary() {
	case ResultNotice:
		ev = log.Info()
	case ResultWarning:
		ev = log.Warn()
	default:
		ev = log.Error()
	}
	ev.Int32("code", int32(code)).Msgf("sqlite: %.8x %s", uint32(code), msg)
}
