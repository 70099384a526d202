package rolllog

// ComputeStreak returns how many consecutive most-recent 2d6 records share
// rawTotal, counting the roll about to be recorded.
//
// The scan runs newest to oldest and stops at the first record that is not
// 2d6 or has a different raw total.
//
// Precondition: log is newest-first and does NOT yet contain the new roll;
// passing the log after appending counts the new roll twice.
// Postcondition: return value >= 1.
func ComputeStreak(rawTotal int, log []Record) int {
	count := 0
	for _, r := range log {
		if !r.IsTwoD6() || r.RawTotal != rawTotal {
			break
		}
		count++
	}
	return count + 1
}
