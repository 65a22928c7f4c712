// Enums shared by configuration and processing packages. Generated code lives
// in enums_enum.go, run "go generate" after changing ENUM declarations.
package common

//go:generate go tool go-enum --marshal --names

// Order in which fragments are put back together during reassembly.
// ENUM(alpha, natural)
type NameOrder int
