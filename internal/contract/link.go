package contract

import (
	"regexp"
	"sort"
	"strings"
)

// placeholderRe matches a library placeholder: the library name between two
// leading underscores and a run of padding underscores.
var placeholderRe = regexp.MustCompile(`__[^_]+_+`)

func placeholderName(p string) string {
	return strings.Trim(p, "_")
}

// unlinkedLibraries returns the library names still referenced in binary,
// deduplicated and sorted.
func unlinkedLibraries(binary string) []string {
	matches := placeholderRe.FindAllString(binary, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		name := placeholderName(m)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// linkBinary replaces every placeholder whose library is in links with the
// library address, without its 0x prefix.
func linkBinary(unlinked string, links map[string]string) string {
	if len(links) == 0 {
		return unlinked
	}
	return placeholderRe.ReplaceAllStringFunc(unlinked, func(p string) string {
		addr, ok := links[placeholderName(p)]
		if !ok {
			return p
		}
		return strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	})
}
