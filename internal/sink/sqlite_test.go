package sink

import (
	"strings"
	"testing"

	"nctrace/internal/config"
	"nctrace/internal/table"
	"nctrace/internal/value"
)

func buildTestTable(t *testing.T) *table.Table {
	t.Helper()
	cfg := config.New([]string{"X"})
	rows := []map[string]value.Value{
		{"X": value.Float(1), "M": value.StrList([]string{"M3", "M8"})},
	}
	tbl, err := table.Finalize(rows, cfg)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return tbl
}

func TestSQLiteSinkBuildSchemaSeparatesMColumn(t *testing.T) {
	tbl := buildTestTable(t)
	s := NewSQLiteSink("ignored.db", "")
	mIndex, ddl := s.buildSchema(tbl)

	if mIndex < 0 {
		t.Fatal("expected mIndex to point at the M column")
	}
	if !strings.Contains(ddl, `CREATE TABLE IF NOT EXISTS "rows"`) {
		t.Errorf("ddl missing row table: %s", ddl)
	}
	if !strings.Contains(ddl, `"rows_m_codes"`) {
		t.Errorf("ddl missing child m_codes table: %s", ddl)
	}
	if strings.Contains(ddl, `"M" `) {
		t.Errorf("M column should not appear in the row table DDL: %s", ddl)
	}
}

func TestSQLiteSinkDefaultTableName(t *testing.T) {
	s := NewSQLiteSink("out.db", "")
	if s.Table != "rows" {
		t.Errorf("default table name = %q, want rows", s.Table)
	}
	s2 := NewSQLiteSink("out.db", "trace")
	if s2.Table != "trace" {
		t.Errorf("table name = %q, want trace", s2.Table)
	}
}

func TestSQLiteSinkBuildInsertsExcludesMColumn(t *testing.T) {
	tbl := buildTestTable(t)
	s := NewSQLiteSink("ignored.db", "")
	mIndex, _ := s.buildSchema(tbl)
	insertRow, insertM := s.buildInserts(tbl, mIndex)

	if strings.Contains(insertRow, `"M"`) {
		t.Errorf("insertRow should not reference the M column: %s", insertRow)
	}
	if !strings.Contains(insertM, "m_code") {
		t.Errorf("insertM should target the m_code column: %s", insertM)
	}
}

func TestSqlTypeMapping(t *testing.T) {
	cases := map[table.Dtype]string{
		table.DtypeInt64:   "INTEGER",
		table.DtypeFloat64: "REAL",
		table.DtypeString:  "TEXT",
		table.DtypeStrList: "TEXT",
	}
	for dt, want := range cases {
		if got := sqlType(dt); got != want {
			t.Errorf("sqlType(%v) = %q, want %q", dt, got, want)
		}
	}
}

func TestCellArgConvertsByTag(t *testing.T) {
	if cellArg(value.Null()) != nil {
		t.Error("cellArg(Null) should be nil")
	}
	if got := cellArg(value.Float(1.5)); got != 1.5 {
		t.Errorf("cellArg(Float) = %v, want 1.5", got)
	}
	if got := cellArg(value.Int(3)); got != int64(3) {
		t.Errorf("cellArg(Int) = %v, want 3", got)
	}
	if got := cellArg(value.Str("G1")); got != "G1" {
		t.Errorf("cellArg(Str) = %v, want G1", got)
	}
}
