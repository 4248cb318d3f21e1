package sqlite

import (
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"

	"github.com/n1/sqlitewrap/internal/errs"
)

const ptrSize = types.Size_t(unsafe.Sizeof(uintptr(0)))

// sqliteStatic tells the engine the bound buffer outlives the statement.
const sqliteStatic uintptr = 0

var (
	emptyCString = mustCString("")
	freeFuncPtr  = cFuncPointer(libc.Xfree)
)

func malloc(tls *libc.TLS, n types.Size_t) (uintptr, error) {
	p := libc.Xmalloc(tls, n)
	if p == 0 {
		return 0, errs.ErrOutOfMemory
	}
	return p, nil
}

func cString(s string) (uintptr, error) {
	p, err := libc.CString(s)
	if err != nil || p == 0 {
		return 0, errs.ErrOutOfMemory
	}
	return p, nil
}

func mustCString(s string) uintptr {
	p, err := libc.CString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// cCopy moves b into engine-owned memory, released with freeFuncPtr.
func cCopy(tls *libc.TLS, b []byte) (uintptr, error) {
	n := types.Size_t(len(b))
	if n == 0 {
		n = 1
	}
	p, err := malloc(tls, n)
	if err != nil {
		return 0, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(p)), len(b)), b)
	return p, nil
}

// cCopyString is cCopy for text.
func cCopyString(tls *libc.TLS, s string) (uintptr, error) {
	n := types.Size_t(len(s))
	if n == 0 {
		n = 1
	}
	p, err := malloc(tls, n)
	if err != nil {
		return 0, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(p)), len(s)), s)
	return p, nil
}

// borrow aliases n bytes of engine memory at p without copying.
func borrow(p uintptr, n int) []byte {
	if p == 0 {
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// cFuncPointer converts a function declared at package level into a C
// function pointer. The result of using it on closures is undefined.
func cFuncPointer[T any](f T) uintptr {
	// Relies on the func value layout described in https://golang.org/s/go11func.
	return *(*uintptr)(unsafe.Pointer(&struct{ f T }{f}))
}
