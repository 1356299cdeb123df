package sink

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"nctrace/internal/table"
	"nctrace/internal/value"
)

// SQLiteSink writes a table to a SQLite database file: one row table
// (named "rows" by default) holding every non-M column, and a child
// "<table>_m_codes" table holding the exploded M-command list, one
// (row_id, m_code) record per command keyed by the row table's row_id.
// No foreign-key constraint is declared. Connection setup
// follows db_manager.go's Connect (sql.Open with the pure-Go "sqlite"
// driver, then Ping before use).
type SQLiteSink struct {
	Path  string
	Table string
}

func NewSQLiteSink(path, tableName string) *SQLiteSink {
	if tableName == "" {
		tableName = "rows"
	}
	return &SQLiteSink{Path: path, Table: tableName}
}

func (s *SQLiteSink) Write(t *table.Table) error {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	mIndex, ddl := s.buildSchema(t)
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertRow, insertM := s.buildInserts(t, mIndex)
	rowStmt, err := tx.Prepare(insertRow)
	if err != nil {
		return err
	}
	defer rowStmt.Close()

	var mStmt *sql.Stmt
	if mIndex >= 0 {
		mStmt, err = tx.Prepare(insertM)
		if err != nil {
			return err
		}
		defer mStmt.Close()
	}

	for i := 0; i < t.NRows; i++ {
		row := t.Row(i)
		args := make([]interface{}, 0, len(row))
		for j, cell := range row {
			if j == mIndex {
				continue
			}
			args = append(args, cellArg(cell))
		}
		res, err := rowStmt.Exec(args...)
		if err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
		if mIndex >= 0 {
			rowID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("reading row_id of row %d: %w", i, err)
			}
			if codes, ok := row[mIndex].StrList(); ok {
				for _, code := range codes {
					if _, err := mStmt.Exec(rowID, code); err != nil {
						return fmt.Errorf("inserting m_codes for row %d: %w", i, err)
					}
				}
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteSink) buildSchema(t *table.Table) (mIndex int, ddl string) {
	mIndex = -1
	var cols []string
	for i, name := range t.ColumnOrder {
		if name == "M" {
			mIndex = i
			continue
		}
		cols = append(cols, fmt.Sprintf("%q %s", name, sqlType(t.Columns[name].Dtype)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %q (row_id INTEGER PRIMARY KEY, %s);\n",
		s.Table, strings.Join(cols, ", "))
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %q (row_id INTEGER NOT NULL, m_code TEXT NOT NULL);",
		s.Table+"_m_codes")
	return mIndex, sb.String()
}

func (s *SQLiteSink) buildInserts(t *table.Table, mIndex int) (insertRow, insertM string) {
	var names []string
	for i, name := range t.ColumnOrder {
		if i == mIndex {
			continue
		}
		names = append(names, fmt.Sprintf("%q", name))
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(names)), ",")
	insertRow = fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", s.Table, strings.Join(names, ", "), placeholders)
	insertM = fmt.Sprintf("INSERT INTO %q (row_id, m_code) VALUES (?, ?)", s.Table+"_m_codes")
	return insertRow, insertM
}

func sqlType(dt table.Dtype) string {
	switch dt {
	case table.DtypeInt64:
		return "INTEGER"
	case table.DtypeFloat64:
		return "REAL"
	default:
		return "TEXT"
	}
}

func cellArg(v value.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	if f, ok := v.Float(); ok {
		return f
	}
	if n, ok := v.Int(); ok {
		return n
	}
	if str, ok := v.Str(); ok {
		return str
	}
	return v.String()
}
