package item

// DominantContentArea returns the label of the largest weight, treating
// absent weights as zero. Ties go to the earlier area. There is no dominant
// area unless the largest weight is above zero.
func DominantContentArea(weights [NumContentAreas]*float64) (string, bool) {
	best := -1
	var top float64
	for i, w := range weights {
		var v float64
		if w != nil {
			v = *w
		}
		if best < 0 || v > top {
			best, top = i, v
		}
	}
	if best < 0 || !(top > 0) {
		return "", false
	}
	return ContentArea(best).Label(), true
}
