package sqlite

const (
	tableExistsSQL  = "SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?"
	columnExistsSQL = "SELECT 1 FROM pragma_table_info(?) WHERE name = ?"
)

// TableExists reports whether the main schema has a table named table.
func (c *Conn) TableExists(table string) (bool, error) {
	return c.exists(tableExistsSQL, table)
}

// ColumnExists reports whether table has a column named column. A missing
// table reports false.
func (c *Conn) ColumnExists(table, column string) (bool, error) {
	return c.exists(columnExistsSQL, table, column)
}

func (c *Conn) exists(query string, args ...any) (bool, error) {
	var stmt Stmt
	defer stmt.Close()

	if err := c.Prepare(query, &stmt); err != nil {
		return false, err
	}
	if err := stmt.BindMulti(0, args...); err != nil {
		return false, err
	}
	return stmt.Step()
}
