package paths

import (
	"strings"

	"github.com/rhyru9/osgit/core"
)

// Extract returns the sorted unique full paths of tree, or with fullPaths
// false, the sorted unique path segments.
func Extract(tree *Tree, fullPaths bool) []string {
	if tree == nil {
		return nil
	}

	var items []string
	for _, e := range tree.Entries {
		if e.Path == "" {
			continue
		}
		if fullPaths {
			items = append(items, e.Path)
			continue
		}
		for _, seg := range strings.Split(e.Path, "/") {
			if seg != "" {
				items = append(items, seg)
			}
		}
	}
	return core.SortedUnique(items)
}
