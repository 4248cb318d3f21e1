package sqlite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prepareRow prepares query on conn and steps it onto its first row.
func prepareRow(t *testing.T, conn *Conn, query string, args ...any) *Stmt {
	var stmt Stmt
	t.Cleanup(func() { stmt.Close() })
	require.NoError(t, conn.Prepare(query, &stmt), "Prepare %q failed", query)
	require.NoError(t, stmt.BindMulti(0, args...), "Binding failed")
	row, err := stmt.Step()
	require.NoError(t, err, "Step failed")
	require.True(t, row, "Expected a row")
	return &stmt
}

func TestBindColumnRoundTrip(t *testing.T) {
	conn := openTestConn(t)

	t.Run("int64", func(t *testing.T) {
		for _, v := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
			stmt := prepareRow(t, conn, "SELECT ?", v)
			got, err := stmt.ColumnInt64(0)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("float64", func(t *testing.T) {
		for _, v := range []float64{0, 1.5, -2.25, math.MaxFloat64, math.SmallestNonzeroFloat64} {
			stmt := prepareRow(t, conn, "SELECT ?", v)
			got, err := stmt.ColumnFloat64(0)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("text", func(t *testing.T) {
		for _, v := range []string{"x", "hello, world", "nul\x00inside", "ünïcode"} {
			stmt := prepareRow(t, conn, "SELECT ?", v)
			got, err := stmt.ColumnText(0)
			require.NoError(t, err)
			assert.Equal(t, v, got)
			typ, err := stmt.ColumnType(0)
			require.NoError(t, err)
			assert.Equal(t, TypeText, typ)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		stmt := prepareRow(t, conn, "SELECT ?", "")
		typ, err := stmt.ColumnType(0)
		require.NoError(t, err)
		assert.Equal(t, TypeText, typ, "Empty text is not NULL")
		raw, err := stmt.ColumnRawText(0)
		require.NoError(t, err)
		assert.NotNil(t, raw)
		assert.Empty(t, raw)
	})

	t.Run("blob", func(t *testing.T) {
		v := []byte{0x00, 0x01, 0xfe, 0xff}
		stmt := prepareRow(t, conn, "SELECT ?", v)
		got, err := stmt.ColumnBytes(0)
		require.NoError(t, err)
		assert.Equal(t, v, got)

		// The engine keeps its own copy of bound bytes.
		v[0] = 0x42
		got, err = stmt.ColumnBytes(0)
		require.NoError(t, err)
		assert.Equal(t, byte(0x00), got[0])
	})

	t.Run("empty blob", func(t *testing.T) {
		stmt := prepareRow(t, conn, "SELECT ?", []byte{})
		typ, err := stmt.ColumnType(0)
		require.NoError(t, err)
		assert.Equal(t, TypeBlob, typ, "Empty blob is not NULL")
		raw, err := stmt.ColumnRawBlob(0)
		require.NoError(t, err)
		assert.NotNil(t, raw)
		assert.Empty(t, raw)
	})

	t.Run("null", func(t *testing.T) {
		for _, v := range []any{nil, []byte(nil)} {
			stmt := prepareRow(t, conn, "SELECT ?", v)
			typ, err := stmt.ColumnType(0)
			require.NoError(t, err)
			assert.Equal(t, TypeNull, typ)

			raw, err := stmt.ColumnRawBlob(0)
			require.NoError(t, err)
			assert.Nil(t, raw)
			raw, err = stmt.ColumnRawText(0)
			require.NoError(t, err)
			assert.Nil(t, raw)

			n, err := stmt.ColumnInt64(0)
			require.NoError(t, err)
			assert.Zero(t, n)
			f, err := stmt.ColumnFloat64(0)
			require.NoError(t, err)
			assert.Zero(t, f)
			s, err := stmt.ColumnText(0)
			require.NoError(t, err)
			assert.Empty(t, s)
		}
	})

	t.Run("uint64", func(t *testing.T) {
		v := uint64(math.MaxUint64 - 1)
		stmt := prepareRow(t, conn, "SELECT ?", v)
		got, err := stmt.ColumnUint64(0)
		require.NoError(t, err)
		assert.Equal(t, v, got)

		signed, err := stmt.ColumnInt64(0)
		require.NoError(t, err)
		assert.Equal(t, int64(-2), signed, "Large unsigned values keep their bit pattern")
	})
}

func TestStepIdempotentAfterDone(t *testing.T) {
	conn := openTestConn(t)
	require.NoError(t, conn.Exec("CREATE TABLE t(a)"))
	require.NoError(t, conn.Exec("INSERT INTO t VALUES (7)"))

	var stmt Stmt
	defer stmt.Close()
	require.NoError(t, conn.Prepare("SELECT a FROM t", &stmt))

	row, err := stmt.Step()
	require.NoError(t, err)
	require.True(t, row)

	for i := 0; i < 3; i++ {
		row, err = stmt.Step()
		require.NoError(t, err, "Step %d after exhaustion", i)
		assert.False(t, row, "Step %d after exhaustion", i)
	}

	// Reset rewinds so the row is produced again.
	require.NoError(t, stmt.Reset())
	row, err = stmt.Step()
	require.NoError(t, err)
	assert.True(t, row)
	assert.Equal(t, int64(7), stmt.Int64(0))
}

func TestStepEmptyResult(t *testing.T) {
	conn := openTestConn(t)
	require.NoError(t, conn.Exec("CREATE TABLE t(a)"))

	var stmt Stmt
	defer stmt.Close()
	require.NoError(t, conn.Prepare("SELECT a FROM t", &stmt))
	for i := 0; i < 2; i++ {
		row, err := stmt.Step()
		require.NoError(t, err)
		assert.False(t, row)
	}
}

func TestResetRebind(t *testing.T) {
	conn := openTestConn(t)
	require.NoError(t, conn.Exec("CREATE TABLE t(id INTEGER PRIMARY KEY, v TEXT)"))

	var ins Stmt
	defer ins.Close()
	require.NoError(t, conn.Prepare("INSERT INTO t(v) VALUES (?)", &ins))
	assert.Equal(t, 1, ins.BindCount())

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, ins.BindText(0, v))
		_, err := ins.Step()
		require.NoError(t, err)
		require.NoError(t, ins.Reset())
	}

	// A failed step is reported once; Reset does not repeat it.
	require.NoError(t, conn.Exec("CREATE UNIQUE INDEX t_v ON t(v)"))
	require.NoError(t, ins.BindText(0, "a"))
	_, err := ins.Step()
	require.Error(t, err)
	assert.Equal(t, ResultConstraint, ErrCode(err).Primary())
	require.NoError(t, ins.Reset())

	require.NoError(t, ins.ClearBindings())
	_, err = ins.Step()
	require.NoError(t, err, "Cleared binding inserts NULL")

	var count int64
	sel := prepareRow(t, conn, "SELECT COUNT(*), COUNT(v) FROM t")
	var nonNull int64
	require.NoError(t, sel.ColumnMulti(0, &count, &nonNull))
	assert.Equal(t, int64(4), count)
	assert.Equal(t, int64(3), nonNull)
}

func TestBindMulti(t *testing.T) {
	conn := openTestConn(t)

	var stmt Stmt
	defer stmt.Close()
	require.NoError(t, conn.Prepare("SELECT ?, ?, ?, ?, ?", &stmt))
	assert.Equal(t, 5, stmt.BindCount())

	require.NoError(t, stmt.BindMulti(0, int64(1), 2.5, "three", []byte("four"), true))
	row, err := stmt.Step()
	require.NoError(t, err)
	require.True(t, row)

	var (
		a int64
		b float64
		c string
		d []byte
		e bool
	)
	require.NoError(t, stmt.ColumnMulti(0, &a, &b, &c, &d, &e))
	assert.Equal(t, int64(1), a)
	assert.Equal(t, 2.5, b)
	assert.Equal(t, "three", c)
	assert.Equal(t, []byte("four"), d)
	assert.True(t, e)

	// Starting offset applies to both sides.
	var n int
	var s string
	require.NoError(t, stmt.ColumnMulti(1, new(float64), &s))
	require.NoError(t, stmt.ColumnMulti(0, &n))
	assert.Equal(t, "three", s)
	assert.Equal(t, 1, n)
}

func TestBindMultiStopsAtFirstFailure(t *testing.T) {
	conn := openTestConn(t)

	var stmt Stmt
	defer stmt.Close()
	require.NoError(t, conn.Prepare("SELECT ?, ?, ?", &stmt))

	err := stmt.BindMulti(0, int64(1), struct{}{}, int64(3))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	row, err := stmt.Step()
	require.NoError(t, err)
	require.True(t, row)

	a, err := stmt.ColumnInt64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a)
	for _, idx := range []int{1, 2} {
		typ, err := stmt.ColumnType(idx)
		require.NoError(t, err)
		assert.Equal(t, TypeNull, typ, "Parameter %d should be unbound", idx)
	}

	// Engine-side failures stop the sequence too.
	require.NoError(t, stmt.Reset())
	err = stmt.BindMulti(2, int64(1), int64(2))
	require.Error(t, err)
	assert.Equal(t, ResultRange, ErrCode(err).Primary())
}

func TestColumnMultiStopsAtFirstFailure(t *testing.T) {
	conn := openTestConn(t)
	stmt := prepareRow(t, conn, "SELECT 1, 2")

	a, b, c := int64(-1), int64(-1), int64(-1)
	err := stmt.ColumnMulti(0, &a, &b, &c)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
	assert.Equal(t, int64(-1), c, "Target after the failure should be untouched")

	var ch chan int
	assert.ErrorIs(t, stmt.ColumnMulti(0, &ch), ErrUnsupportedType)
}

func TestColumnIndexOutOfBounds(t *testing.T) {
	conn := openTestConn(t)
	stmt := prepareRow(t, conn, "SELECT 1 AS one, 'two' AS two")

	assert.Equal(t, 2, stmt.ColumnCount())
	name, err := stmt.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "two", name)

	readers := map[string]func(idx int) error{
		"ColumnName":    func(i int) error { _, err := stmt.ColumnName(i); return err },
		"ColumnType":    func(i int) error { _, err := stmt.ColumnType(i); return err },
		"ColumnInt64":   func(i int) error { _, err := stmt.ColumnInt64(i); return err },
		"ColumnUint64":  func(i int) error { _, err := stmt.ColumnUint64(i); return err },
		"ColumnFloat64": func(i int) error { _, err := stmt.ColumnFloat64(i); return err },
		"ColumnText":    func(i int) error { _, err := stmt.ColumnText(i); return err },
		"ColumnBytes":   func(i int) error { _, err := stmt.ColumnBytes(i); return err },
		"ColumnRawText": func(i int) error { _, err := stmt.ColumnRawText(i); return err },
		"ColumnRawBlob": func(i int) error { _, err := stmt.ColumnRawBlob(i); return err },
		"ColumnSlice":   func(i int) error { _, err := ColumnSlice[uint32](stmt, i); return err },
		"ColumnMulti":   func(i int) error { var v int64; return stmt.ColumnMulti(i, &v) },
	}
	for name, read := range readers {
		for _, idx := range []int{-1, 2, 100} {
			assert.ErrorIs(t, read(idx), ErrIndexOutOfBounds, "%s(%d)", name, idx)
		}
	}
}

func TestEmptyStmtNotOpen(t *testing.T) {
	var stmt Stmt

	_, err := stmt.Step()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, stmt.Reset(), ErrNotOpen)
	assert.ErrorIs(t, stmt.BindNull(0), ErrNotOpen)
	assert.ErrorIs(t, stmt.BindText(0, "x"), ErrNotOpen)
	assert.ErrorIs(t, stmt.BindBytes(0, []byte("x")), ErrNotOpen)
	_, err = stmt.ColumnInt64(0)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.Zero(t, stmt.BindCount())
	assert.Zero(t, stmt.ColumnCount())
}

func TestTypedSlices(t *testing.T) {
	conn := openTestConn(t)

	want := []uint32{1, 2, 0xdeadbeef}
	var stmt Stmt
	defer stmt.Close()
	require.NoError(t, conn.Prepare("SELECT ?, ?, ?", &stmt))
	require.NoError(t, BindSlice(&stmt, 0, want))
	require.NoError(t, BindSlice(&stmt, 1, []float64{}))
	require.NoError(t, BindSlice[int16](&stmt, 2, nil))
	row, err := stmt.Step()
	require.NoError(t, err)
	require.True(t, row)

	got, err := ColumnSlice[uint32](&stmt, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	blob, err := stmt.ColumnBytes(0)
	require.NoError(t, err)
	assert.Len(t, blob, 12)

	// Element size 8 leaves 4 trailing bytes that are dropped.
	wide, err := ColumnSlice[uint64](&stmt, 0)
	require.NoError(t, err)
	assert.Len(t, wide, 1)

	empty, err := ColumnSlice[float64](&stmt, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	null, err := ColumnSlice[int16](&stmt, 2)
	require.NoError(t, err)
	assert.Nil(t, null)

	assert.Equal(t, want, SliceOf[uint32](&stmt, 0))
	require.NoError(t, stmt.Err())
}

func TestConvenienceReadersRecordFirstError(t *testing.T) {
	conn := openTestConn(t)
	stmt := prepareRow(t, conn, "SELECT 3, 1.5, 'txt'")

	assert.Equal(t, int64(3), stmt.Int64(0))
	assert.Equal(t, 1.5, stmt.Float64(1))
	assert.Equal(t, "txt", stmt.Text(2))
	assert.Equal(t, []byte("txt"), stmt.RawText(2))
	require.NoError(t, stmt.Err())

	assert.Zero(t, stmt.Int64(5))
	assert.Nil(t, SliceOf[byte](stmt, -1))
	assert.ErrorIs(t, stmt.Err(), ErrIndexOutOfBounds)

	require.NoError(t, stmt.Reset())
	assert.NoError(t, stmt.Err(), "Reset clears the recorded error")
}

func TestRePrepareReleasesPrevious(t *testing.T) {
	conn := openTestConn(t)

	var stmt Stmt
	defer stmt.Close()
	require.NoError(t, conn.Prepare("SELECT 1", &stmt))
	require.NoError(t, conn.Prepare("SELECT 'a', 'b'", &stmt))
	assert.Equal(t, 2, stmt.ColumnCount())

	// A failed prepare leaves the statement empty rather than holding the old one.
	require.Error(t, conn.Prepare("SELECT FROM", &stmt))
	assert.False(t, stmt.IsOpen())
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "INTEGER", TypeInteger.String())
	assert.Equal(t, "NULL", TypeNull.String())
	assert.Equal(t, "ColumnType(99)", ColumnType(99).String())
	assert.Equal(t, "SQLITE_CANTOPEN", ResultCantOpen.String())
}
