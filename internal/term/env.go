package term

import (
	"sort"
	"strings"
)

// MergeEnviron overlays key/value pairs onto a base environment in
// "KEY=value" form. Overlay values win. When caseInsensitive is true keys are
// matched ignoring case, and the base entry's original casing is preserved,
// so overlaying "path" onto "Path=C:\\old" yields "Path=<new>".
func MergeEnviron(base []string, overlay map[string]string, caseInsensitive bool) []string {
	out := make([]string, 0, len(base)+len(overlay))
	if len(overlay) == 0 {
		return append(out, base...)
	}

	remaining := make(map[string]string, len(overlay))
	for k, v := range overlay {
		remaining[k] = v
	}

	for _, entry := range base {
		key, _, ok := strings.Cut(entry, "=")
		if !ok {
			out = append(out, entry)
			continue
		}
		matched, found := "", false
		for ok := range remaining {
			if ok == key || (caseInsensitive && strings.EqualFold(ok, key)) {
				matched, found = ok, true
				break
			}
		}
		if found {
			out = append(out, key+"="+remaining[matched])
			delete(remaining, matched)
		} else {
			out = append(out, entry)
		}
	}

	// Overlay keys not present in the base, in stable order.
	keys := make([]string, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+remaining[k])
	}
	return out
}
