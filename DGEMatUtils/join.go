package dgematutils

/*JoinKind which unmatched records a join keeps */
type JoinKind int

const (
	/*Inner keep keys present on both sides */
	Inner JoinKind = iota
	/*Left keep every left record */
	Left
	/*Right keep every right record */
	Right
	/*Full keep every record of both sides */
	Full
)

func (k JoinKind) String() string {
	switch k {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Full:
		return "full"
	}

	return "unknown"
}

/*Join combine left and right on the keys returned by lkey and rkey.
merge receives nil for the missing side of an unmatched record. Output
follows left order, then the unmatched right records in right order.
A left key matching several right records emits one output per match. */
func Join[L, R any, K comparable, O any](
	left []L, right []R,
	lkey func(L) K, rkey func(R) K,
	kind JoinKind,
	merge func(l *L, r *R) O) []O {

	index := make(map[K][]int, len(right))

	for j := range right {
		key := rkey(right[j])
		index[key] = append(index[key], j)
	}

	keepLeft := kind == Left || kind == Full
	keepRight := kind == Right || kind == Full

	matched := make([]bool, len(right))
	out := make([]O, 0, len(left))

	for i := range left {
		hits := index[lkey(left[i])]

		if len(hits) == 0 {
			if keepLeft {
				out = append(out, merge(&left[i], nil))
			}

			continue
		}

		for _, j := range hits {
			matched[j] = true
			out = append(out, merge(&left[i], &right[j]))
		}
	}

	if keepRight {
		for j := range right {
			if !matched[j] {
				out = append(out, merge(nil, &right[j]))
			}
		}
	}

	return out
}
