package dgematutils

import (
	"strings"

	"github.com/biogo/store/llrb"
)

type label string

func (l label) Compare(b llrb.Comparable) int {
	return strings.Compare(string(l), string(b.(label)))
}

/*labelSet distinct labels kept in ascending byte order */
type labelSet struct {
	tree llrb.Tree
}

func (s *labelSet) add(value string) {
	if s.tree.Get(label(value)) == nil {
		s.tree.Insert(label(value))
	}
}

/*positions sorted labels and label -> position */
func (s *labelSet) positions() ([]string, map[string]int) {
	sorted := make([]string, 0, s.tree.Len())
	pos := make(map[string]int, s.tree.Len())

	s.tree.Do(func(c llrb.Comparable) (done bool) {
		pos[string(c.(label))] = len(sorted)
		sorted = append(sorted, string(c.(label)))
		return false
	})

	return sorted, pos
}
