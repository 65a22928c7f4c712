package common

import (
	"errors"
	"testing"
)

func TestStemName(t *testing.T) {
	for in, want := range map[string]string{
		"HR_Admin.permissionset-meta.xml": "HR_Admin",
		"Root.xml":                        "Root",
		"noext":                           "noext",
		".hidden.xml":                     "",
	} {
		if got := StemName(in); got != want {
			t.Errorf("StemName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldName(t *testing.T) {
	if FoldName("Account.Name") != FoldName("ACCOUNT.name") {
		t.Error("names differing in case only should fold to the same value")
	}
	if FoldName("Straße") != FoldName("STRASSE") {
		t.Error("full case folding expected")
	}
}

func TestParseNameOrder(t *testing.T) {
	for _, name := range NameOrderNames() {
		o, err := ParseNameOrder(name)
		if err != nil {
			t.Fatalf("ParseNameOrder(%q) error: %v", name, err)
		}
		if o.String() != name {
			t.Errorf("String() = %q, want %q", o.String(), name)
		}
	}
	if _, err := ParseNameOrder("random"); !errors.Is(err, ErrInvalidNameOrder) {
		t.Errorf("expected ErrInvalidNameOrder, got %v", err)
	}

	var o NameOrder
	if err := o.UnmarshalText([]byte("natural")); err != nil || o != NameOrderNatural {
		t.Errorf("UnmarshalText() = %v, %v", o, err)
	}
}

func TestDuplicateIdentifierWarning(t *testing.T) {
	var err error = &DuplicateIdentifierWarning{Tag: "fieldPermissions", ID: "a", Renamed: "a_2"}
	var w *DuplicateIdentifierWarning
	if !errors.As(err, &w) || w.Renamed != "a_2" {
		t.Fatalf("unexpected warning: %v", err)
	}
	if err.Error() != `duplicate identifier "a" for <fieldPermissions>, stored as "a_2"` {
		t.Errorf("unexpected message: %s", err)
	}
}
