package pricing

// ladder prices the levels in idx on a straight line anchored at top for the
// first index and falling by a constant step per level, so that the
// subject-weighted mean over idx equals avg. Levels keep their original
// position, which preserves the spacing of a partially clamped ladder.
// The returned slice is aligned with idx.
func ladder(top, avg float64, counts []int, idx []int) []float64 {
	out := make([]float64, len(idx))
	if len(idx) == 0 {
		return out
	}
	origin := idx[0]
	var weight, moment float64
	for _, i := range idx {
		w := float64(counts[i])
		weight += w
		moment += w * float64(i-origin)
	}
	if weight == 0 || moment == 0 {
		// Only the anchor level carries subjects: a flat line is the sole fit.
		for k := range out {
			out[k] = avg
		}
		return out
	}
	step := (top - avg) / (moment / weight)
	for k, i := range idx {
		out[k] = top - step*float64(i-origin)
	}
	return out
}

// partition splits idx into the levels priced at or above floor and the ones
// that fell below it.
func partition(idx []int, prices []float64, floor float64) (keep, below []int) {
	for k, i := range idx {
		if prices[k] < floor {
			below = append(below, i)
			continue
		}
		keep = append(keep, i)
	}
	return keep, below
}

// clampAndRedistribute solves the ladder for the required tiered revenue and
// repeatedly pins levels that fall under floor, handing the remaining revenue
// to the unclamped set. Every pass either terminates or clamps at least one
// more level, so the loop runs at most len(counts) times.
func clampAndRedistribute(top, floor, required float64, counts []int) (prices []float64, clamped []bool, passes int) {
	n := len(counts)
	prices = make([]float64, n)
	clamped = make([]bool, n)

	unclamped := make([]int, n)
	for i := range unclamped {
		unclamped[i] = i
	}
	pinned := 0

	for passes < n && len(unclamped) > 0 {
		passes++
		var weight int
		for _, i := range unclamped {
			weight += counts[i]
		}
		need := required - floor*float64(pinned)
		if weight == 0 {
			break
		}
		avg := need / float64(weight)
		if avg <= floor {
			for _, i := range unclamped {
				prices[i] = floor
				clamped[i] = true
			}
			unclamped = nil
			break
		}

		line := ladder(top, avg, counts, unclamped)
		keep, below := partition(unclamped, line, floor)
		if len(below) == 0 {
			for k, i := range unclamped {
				prices[i] = line[k]
			}
			unclamped = nil
			break
		}
		for _, i := range below {
			prices[i] = floor
			clamped[i] = true
			pinned += counts[i]
		}
		unclamped = keep
	}

	// Levels left without subjects after the loop still need a legal price.
	for _, i := range unclamped {
		prices[i] = floor
		clamped[i] = true
	}
	return prices, clamped, passes
}
