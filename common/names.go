package common

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName returns case folded form of a file name. It is used whenever file
// names are compared without regard to case.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

// StemName returns part of the file name before its first dot:
// "HR_Admin.permissionset-meta.xml" becomes "HR_Admin".
func StemName(name string) string {
	stem, _, _ := strings.Cut(name, ".")
	return stem
}
