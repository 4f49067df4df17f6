package runtime

import (
	"fmt"
	"strings"
)

// pathStep is one accessor of a variable path: .field or [index]
type pathStep struct {
	field   string
	index   string
	isIndex bool
}

// splitPath splits an accessor path such as person[property].name into its
// head identifier and the steps after it. Bracket contents are returned raw
// and may themselves be paths.
func splitPath(path string) (string, []pathStep, error) {
	path = strings.TrimSpace(path)
	end := strings.IndexAny(path, ".[")
	if end < 0 {
		end = len(path)
	}
	head := path[:end]
	if head == "" {
		return "", nil, fmt.Errorf("invalid path %q", path)
	}

	var steps []pathStep
	for i := end; i < len(path); {
		switch path[i] {
		case '.':
			j := i + 1
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			if j == i+1 {
				return "", nil, fmt.Errorf("empty field in path %q", path)
			}
			steps = append(steps, pathStep{field: path[i+1 : j]})
			i = j
		case '[':
			depth := 0
			j := i
			for ; j < len(path); j++ {
				if path[j] == '[' {
					depth++
				} else if path[j] == ']' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if j >= len(path) {
				return "", nil, fmt.Errorf("unterminated index in path %q", path)
			}
			inner := strings.TrimSpace(path[i+1 : j])
			if inner == "" {
				return "", nil, fmt.Errorf("empty index in path %q", path)
			}
			steps = append(steps, pathStep{index: inner, isIndex: true})
			i = j + 1
		default:
			return "", nil, fmt.Errorf("unexpected %q in path %q", path[i], path)
		}
	}
	return head, steps, nil
}
