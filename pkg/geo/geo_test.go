/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	if dist := Distance(0, 0, 3, 4); dist != 5 {
		t.Errorf("expected distance 5, got %f", dist)
	}

	if dist := Distance(2, 2, 2, 2); dist != 0 {
		t.Errorf("expected distance 0 for identical points, got %f", dist)
	}

	if dist := Distance(-1, -1, 1, 1); math.Abs(dist-2.8284271247461903) > 1e-12 {
		t.Errorf("expected distance 2*sqrt(2), got %f", dist)
	}
}

func TestInRangeBoundaryIsExcluded(t *testing.T) {
	// point at exactly radius distance is NOT in range
	if InRange(0, 0, 3, 4, 5) {
		t.Error("boundary point reported as in range")
	}

	if !InRange(0, 0, 3, 4, 5.01) {
		t.Error("point inside radius reported as out of range")
	}
}

func TestInRangeCenter(t *testing.T) {
	if !InRange(1, 1, 1, 1, 0.1) {
		t.Error("center point should always be in range for positive radius")
	}

	if InRange(1, 1, 1, 1, 0) {
		t.Error("zero radius contains no points")
	}
}
