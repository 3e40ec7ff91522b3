package assignment

// ComputeResults derives the completion flag and grade from one snapshot of a
// student's answers, scoped to the instance's own question set.
//
// grade = 0.5 * (nFirstCorrect + nCorrect). The single linear formula covers
// every round-completion combination; no clamping or special cases since it is
// symmetric in the two correctness counts.
func ComputeResults(qs []Question, answers []Answer) Results {
	m := answersByQuestion(qs, answers)

	res := Results{NumQuestions: len(qs)}
	for _, q := range qs {
		a, ok := m[q.ID]
		if !ok {
			continue
		}
		if q.IsCorrect(a.FirstChoice) {
			res.NumFirstCorrect++
		}
		if a.HasSecondChoice() {
			res.NumCompleted++
			if q.IsCorrect(int(a.SecondChoice.Int)) {
				res.NumCorrect++
			}
		}
	}

	res.Grade = 0.5 * float64(res.NumFirstCorrect+res.NumCorrect)
	res.Completed = res.NumCompleted == res.NumQuestions
	return res
}
