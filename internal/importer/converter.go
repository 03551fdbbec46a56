package importer

import "strings"

// NameToID converts a tileset or wang set display name to a stable snake_case
// identifier usable as a file name. Spaces, hyphens, dots and underscores
// separate words; every other character outside [a-z0-9] is dropped.
//
// Postcondition: result is lowercase, contains only [a-z0-9_], has no leading,
// trailing or repeated underscores, and is idempotent
// (NameToID(NameToID(s)) == NameToID(s)).
func NameToID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ' || r == '-' || r == '.' || r == '_':
			pendingSep = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
