package history

// Grade buckets today's total into the productivity grade shown on the
// dashboard.
func Grade(totalSeconds int) string {
	mins := totalSeconds / 60

	switch {
	case mins < 15:
		return "A+"
	case mins < 30:
		return "B"
	case mins < 60:
		return "C"
	default:
		return "F"
	}
}
