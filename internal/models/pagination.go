package models

// PageOffset is the element offset a listing starts at. Callers have
// already validated from >= 0 and size > 0.
func PageOffset(from int) int {
	if from < 0 {
		return 0
	}
	return from
}
