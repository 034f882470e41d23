/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package geo holds the coordinate math used by the reader radius
// queries. Distances are planar, not great-circle; reader ranges are
// small enough that the approximation holds.
package geo

import "math"

// Distance returns the Euclidean distance between two coordinates.
func Distance(x1 float64, y1 float64, x2 float64, y2 float64) float64 {
	summation := math.Pow(x1-x2, 2) + math.Pow(y1-y2, 2)
	return math.Sqrt(summation)
}

// InRange reports whether (x2, y2) lies strictly inside the circle of
// the given radius centered at (centerX, centerY). A point exactly on
// the boundary is not in range.
func InRange(centerX float64, centerY float64, x2 float64, y2 float64, radius float64) bool {
	return Distance(centerX, centerY, x2, y2) < radius
}
