package ot_test

import (
	"testing"

	"github.com/driftdoc/client/internal/ot"
)

func TestMerge_Append(t *testing.T) {
	t.Parallel()

	a := ot.Edit{Position: 1, NumDelete: 0, Insert: "B"}
	b := ot.Edit{Position: 2, NumDelete: 0, Insert: "C"}

	if ok := ot.Merge(&a, &b); !ok {
		t.Fatalf("expected merge to succeed")
	}

	if a.Insert != "BC" {
		t.Errorf("expected insert BC, got %q", a.Insert)
	}

	if a.NumDelete != 0 {
		t.Errorf("expected num_delete 0, got %d", a.NumDelete)
	}
}

func TestMerge_Append_WithDelete(t *testing.T) {
	t.Parallel()

	a := ot.Edit{Position: 0, NumDelete: 1, Insert: "X"}
	b := ot.Edit{Position: 1, NumDelete: 2, Insert: "Y"}

	if ok := ot.Merge(&a, &b); !ok {
		t.Fatalf("expected merge to succeed")
	}

	if a.Insert != "XY" || a.NumDelete != 3 {
		t.Errorf("expected {XY,3}, got {%q,%d}", a.Insert, a.NumDelete)
	}
}

func TestMerge_Coincident_InsertSwallowsDelete(t *testing.T) {
	t.Parallel()

	// a inserted "hello" at 0; b deletes 3 chars at 0 (within a's insert).
	a := ot.Edit{Position: 0, NumDelete: 0, Insert: "hello"}
	b := ot.Edit{Position: 0, NumDelete: 3, Insert: ""}

	if ok := ot.Merge(&a, &b); !ok {
		t.Fatalf("expected merge to succeed")
	}

	if a.Insert != "lo" {
		t.Errorf("expected insert lo, got %q", a.Insert)
	}

	if a.NumDelete != 0 {
		t.Errorf("expected num_delete 0, got %d", a.NumDelete)
	}
}

func TestMerge_Coincident_DeleteExceedsInsert(t *testing.T) {
	t.Parallel()

	a := ot.Edit{Position: 2, NumDelete: 0, Insert: "ab"}
	b := ot.Edit{Position: 2, NumDelete: 5, Insert: "Z"}

	if ok := ot.Merge(&a, &b); !ok {
		t.Fatalf("expected merge to succeed")
	}

	// r = max(0, 5-2) = 3
	if a.NumDelete != 3 {
		t.Errorf("expected num_delete 3, got %d", a.NumDelete)
	}

	if a.Insert != "Z" {
		t.Errorf("expected insert Z, got %q", a.Insert)
	}
}

func TestMerge_Interior(t *testing.T) {
	t.Parallel()

	// a inserts "hello" at 0. b inserts "XX" at position 2 (inside a's insert).
	a := ot.Edit{Position: 0, NumDelete: 0, Insert: "hello"}
	b := ot.Edit{Position: 2, NumDelete: 1, Insert: "XX"}

	if ok := ot.Merge(&a, &b); !ok {
		t.Fatalf("expected merge to succeed")
	}

	// o=2, r=max(0, 1-(5-2))=0 -> a.insert = "he" + "XX" + a.insert[3:] = "he"+"XX"+"lo"
	if a.Insert != "heXXlo" {
		t.Errorf("expected heXXlo, got %q", a.Insert)
	}

	if a.NumDelete != 0 {
		t.Errorf("expected num_delete 0, got %d", a.NumDelete)
	}
}

func TestMerge_NoGeometry_Fails(t *testing.T) {
	t.Parallel()

	a := ot.Edit{Position: 0, NumDelete: 0, Insert: "ab"}
	b := ot.Edit{Position: 10, NumDelete: 0, Insert: "z"}

	orig := a

	if ok := ot.Merge(&a, &b); ok {
		t.Fatalf("expected merge to fail for disjoint edits")
	}

	if a != orig {
		t.Errorf("expected a unchanged on failed merge, got %+v", a)
	}
}

func TestMerge_Idempotence(t *testing.T) {
	t.Parallel()

	// merge(a,b) applied to a then b on content s equals applying a' to s.
	content := "0123456789"

	a := ot.Edit{Position: 2, NumDelete: 1, Insert: "XY"}
	b := ot.Edit{Position: 3, NumDelete: 0, Insert: "Z"}

	viaSeparate := b.Apply(a.Apply(content))

	merged := a
	bCopy := b

	if ok := ot.Merge(&merged, &bCopy); !ok {
		t.Fatalf("expected merge to succeed")
	}

	viaMerged := merged.Apply(content)

	if viaSeparate != viaMerged {
		t.Errorf("merge not idempotent: separate=%q merged=%q", viaSeparate, viaMerged)
	}
}
