// Package uniqueid finds names for nested element fragments.
//
// Name of a fragment file is derived from the value of the first of the
// configured candidate fields found in the element. Element's own scalar
// children are checked first, then single nested children are searched depth
// first. Repeated fields are never searched.
package uniqueid

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"xmldisasm/common"
	"xmldisasm/markup"
)

// ParseCandidates splits comma separated list of field names.
func ParseCandidates(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); len(name) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// Resolve returns value of the first candidate field present in the element
// subtree, made safe to be used as a file name.
func Resolve(el *markup.Element, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidate fields specified", common.ErrResolution)
	}
	value, ok := search(el, candidates)
	if !ok {
		return "", fmt.Errorf("%w: none of %v found in <%s>", common.ErrResolution, candidates, el.Tag)
	}
	return Sanitize(value)
}

func search(el *markup.Element, candidates []string) (string, bool) {
	for _, name := range candidates {
		v, ok := el.Lookup(name)
		if !ok {
			continue
		}
		if s, ok := v.(markup.Scalar); ok && len(strings.TrimSpace(s.Text)) > 0 {
			return strings.TrimSpace(s.Text), true
		}
	}
	for _, f := range el.Fields() {
		if nested, ok := f.Value.(*markup.Element); ok {
			if value, ok := search(nested, candidates); ok {
				return value, true
			}
		}
	}
	return "", false
}

// reserved in file names on at least one of supported platforms
const reserved = `/\:*?"<>|`

// Sanitize escapes characters which cannot appear in a path segment using
// %XX notation. Leading dot is escaped too, names starting with a dot are
// hidden and never read back. Blank names are rejected.
func Sanitize(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: %q cannot be used as file name", common.ErrResolution, name)
	}
	var b strings.Builder
	for i, r := range trimmed {
		if r == '%' || unicode.IsControl(r) || strings.ContainsRune(reserved, r) || (i == 0 && r == '.') {
			fmt.Fprintf(&b, "%%%02X", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// Resolver names nested elements, it never fails: when identifier cannot be
// resolved element position inside its repeated field is used.
type Resolver struct {
	Candidates []string
	// Transliterate converts resolved identifiers to ASCII slugs.
	Transliterate bool

	log *zap.Logger
}

func NewResolver(candidates []string, transliterate bool, log *zap.Logger) *Resolver {
	return &Resolver{Candidates: candidates, Transliterate: transliterate, log: log}
}

// Name returns file name base for element. Position is 1-based index of the
// element inside its repeated field (1 for single nested element).
func (r *Resolver) Name(el *markup.Element, position int) (string, bool) {
	id, err := Resolve(el, r.Candidates)
	if err == nil && r.Transliterate {
		if id = slug.Make(id); len(id) == 0 {
			err = fmt.Errorf("%w: transliteration produced empty name", common.ErrResolution)
		}
	}
	if err != nil {
		fallback := strconv.Itoa(position)
		r.log.Debug("Using positional name", zap.String("tag", el.Tag), zap.String("name", fallback), zap.Error(err))
		return fallback, false
	}
	return id, true
}
