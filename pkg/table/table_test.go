package table

import "testing"

func TestAppendRowPadsAndTruncates(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.AppendRow("1")
	tbl.AppendRow("1", "2", "3", "4")

	if got := tbl.Cell(0, "c"); got != "" {
		t.Fatalf("short row should pad, got %q", got)
	}
	if got := len(tbl.Rows[1]); got != 3 {
		t.Fatalf("long row should truncate to 3 cells, got %d", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := New("a")
	src.AppendRow("x")
	cp := src.Clone()
	cp.SetCell(0, "a", "y")
	if src.Cell(0, "a") != "x" {
		t.Fatal("mutating clone leaked into source")
	}
}

func TestSetColumnLengthMismatch(t *testing.T) {
	tbl := New("a")
	tbl.AppendRow("1")
	if err := tbl.SetColumn("a", []string{"1", "2"}); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if err := tbl.SetColumn("missing", []string{"1"}); err == nil {
		t.Fatal("expected missing column error")
	}
}

func TestEnsureColumnBackfills(t *testing.T) {
	tbl := New("a")
	tbl.AppendRow("1")
	tbl.EnsureColumn("flag", "Regular")
	if got := tbl.Cell(0, "flag"); got != "Regular" {
		t.Fatalf("expected backfilled default, got %q", got)
	}
	tbl.EnsureColumn("flag", "Other")
	if got := tbl.Cell(0, "flag"); got != "Regular" {
		t.Fatal("existing column must not be overwritten")
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	tbl := New("a")
	for _, v := range []string{"1", "2", "3", "4"} {
		tbl.AppendRow(v)
	}
	kept := tbl.Filter(func(row int) bool { return row%2 == 0 })
	if kept.Len() != 2 || kept.Cell(0, "a") != "1" || kept.Cell(1, "a") != "3" {
		t.Fatalf("unexpected filter result: %+v", kept.Rows)
	}
}
