package match

// Duplicate describes the registered identity a probe collided with.
type Duplicate struct {
	PersonID string
	Name     string
	Score    float64
}

// CheckDuplicate runs the matcher in duplicate-detection mode before a
// new identity is admitted to the gallery. The caller passes the
// duplicate threshold for the probe's family, which is at most the
// recognition threshold, so flagging a duplicate is never harder than
// recognizing the same person later. A detected duplicate rejects the
// registration outright; there is no override at this level.
func CheckDuplicate(probe Probe, gallery []GalleryEntry, threshold float64) (bool, *Duplicate) {
	result := BestMatch(probe, gallery, threshold)
	if !result.Matched {
		return false, nil
	}
	return true, &Duplicate{
		PersonID: result.PersonID,
		Name:     result.Name,
		Score:    result.Score,
	}
}
