package ot_test

import (
	"errors"
	"testing"

	"github.com/driftdoc/client/internal/ot"
)

func TestEdit_Apply(t *testing.T) {
	t.Parallel()

	e := ot.Edit{Position: 6, NumDelete: 5, Insert: "universe"}

	if got := e.Apply("hello world"); got != "hello universe" {
		t.Errorf("expected %q, got %q", "hello universe", got)
	}
}

func TestValidateEdit_Valid(t *testing.T) {
	t.Parallel()

	edit, err := ot.ValidateEdit(ot.RawEdit{Position: 3, NumDelete: 1, Insert: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if edit.Position != 3 || edit.NumDelete != 1 || edit.Insert != "x" {
		t.Errorf("unexpected normalized edit: %+v", edit)
	}
}

func TestValidateEdit_DefaultsInsertAndDelete(t *testing.T) {
	t.Parallel()

	edit, err := ot.ValidateEdit(ot.RawEdit{Position: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if edit.NumDelete != 0 || edit.Insert != "" {
		t.Errorf("expected zero-value defaults, got %+v", edit)
	}
}

func TestValidateEdit_NegativePosition(t *testing.T) {
	t.Parallel()

	_, err := ot.ValidateEdit(ot.RawEdit{Position: -1})
	if !errors.Is(err, ot.ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestValidateEdit_NegativeNumDelete(t *testing.T) {
	t.Parallel()

	_, err := ot.ValidateEdit(ot.RawEdit{Position: 0, NumDelete: -1})
	if !errors.Is(err, ot.ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestValidateEdit_NonPositiveVersion(t *testing.T) {
	t.Parallel()

	_, err := ot.ValidateEdit(ot.RawEdit{Position: 0, HasVersion: true, Version: 0})
	if !errors.Is(err, ot.ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestValidateEdits_RejectsWholeBatchOnOneBadEdit(t *testing.T) {
	t.Parallel()

	raws := []ot.RawEdit{
		{Position: 0, Insert: "a"},
		{Position: -5},
		{Position: 1, Insert: "c"},
	}

	_, err := ot.ValidateEdits(raws)
	if !errors.Is(err, ot.ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestValidateEdits_AllValid(t *testing.T) {
	t.Parallel()

	raws := []ot.RawEdit{
		{Position: 0, Insert: "a"},
		{Position: 1, Insert: "b"},
	}

	edits, err := ot.ValidateEdits(raws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(edits) != 2 {
		t.Errorf("expected 2 edits, got %d", len(edits))
	}
}
