package sqlite

import (
	"strings"

	lib "modernc.org/sqlite/lib"
)

// OpenFlags is the open-mode bitset passed to the engine.
//
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
type OpenFlags int32

// Open modes. ReadOnly, ReadWrite and Create are the ones this package
// reasons about; the rest pass through to the engine untouched.
const (
	OpenReadOnly     OpenFlags = lib.SQLITE_OPEN_READONLY
	OpenReadWrite    OpenFlags = lib.SQLITE_OPEN_READWRITE
	OpenCreate       OpenFlags = lib.SQLITE_OPEN_CREATE
	OpenURI          OpenFlags = lib.SQLITE_OPEN_URI
	OpenMemory       OpenFlags = lib.SQLITE_OPEN_MEMORY
	OpenNoMutex      OpenFlags = lib.SQLITE_OPEN_NOMUTEX
	OpenFullMutex    OpenFlags = lib.SQLITE_OPEN_FULLMUTEX
	OpenSharedCache  OpenFlags = lib.SQLITE_OPEN_SHAREDCACHE
	OpenPrivateCache OpenFlags = lib.SQLITE_OPEN_PRIVATECACHE
	OpenNoFollow     OpenFlags = lib.SQLITE_OPEN_NOFOLLOW

	// OpenDefault is used by Open.
	OpenDefault = OpenReadWrite | OpenCreate
)

var flagNames = []struct {
	flag OpenFlags
	name string
}{
	{OpenReadOnly, "OpenReadOnly"},
	{OpenReadWrite, "OpenReadWrite"},
	{OpenCreate, "OpenCreate"},
	{OpenURI, "OpenURI"},
	{OpenMemory, "OpenMemory"},
	{OpenNoMutex, "OpenNoMutex"},
	{OpenFullMutex, "OpenFullMutex"},
	{OpenSharedCache, "OpenSharedCache"},
	{OpenPrivateCache, "OpenPrivateCache"},
	{OpenNoFollow, "OpenNoFollow"},
}

// String returns the set flags joined with "|".
func (f OpenFlags) String() string {
	var parts []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}
