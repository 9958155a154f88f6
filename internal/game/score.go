package game

// Percent returns round(100*correct/total) with halves rounded up.
// A zero total scores 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	// (100c/t + 1/2) floored, kept in integers.
	return (200*correct + total) / (2 * total)
}

// Headline is the results-screen title for a final score.
func Headline(score int) string {
	switch {
	case score >= 100:
		return "Perfect!"
	case score >= 80:
		return "Excellent Work!"
	case score >= 60:
		return "Good Effort!"
	default:
		return "Keep Going!"
	}
}
