package assignment

// QuestionAt resolves the question at position idx of the ordered question
// list. idx is trusted to be within bounds; callers index off the same list.
func QuestionAt(qs []Question, idx int) Question {
	return qs[idx]
}

// Adjacent returns the question immediately after (after=true) or before
// (after=false) current in the ordered question list, or nil at either end.
// current is matched by question identity, not by position; the caller may
// hold a question fetched before a reorder.
func Adjacent(qs []Question, current Question, after bool) *Question {
	for i, q := range qs {
		if q.ID != current.ID {
			continue
		}
		j := i - 1
		if after {
			j = i + 1
		}
		if j < 0 || j >= len(qs) {
			return nil
		}
		adj := qs[j]
		return &adj
	}
	return nil
}
