package geo

import "strings"

// CellPrecision is the geohash precision used for coarse locality cells.
// Six characters is roughly a 1.2 km x 0.6 km cell, enough to group
// venues by neighborhood without pinpointing an exact address.
const CellPrecision = 6

// geohashBase32 is the geohash base32 alphabet (excludes a, i, l, o).
const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// LocalityCell encodes a coordinate into a geohash cell at the given
// precision. Cells sharing a prefix are geographically adjacent, which
// is what map snapshots use to cluster nearby venues.
func LocalityCell(c Coordinate, precision int) string {
	if precision < 1 {
		precision = CellPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var cell strings.Builder
	cell.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for cell.Len() < precision {
		if even {
			mid := (lngRange[0] + lngRange[1]) / 2
			if c.Lng > mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if c.Lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			cell.WriteByte(geohashBase32[ch])
			bits = 0
			ch = 0
		}
	}

	return cell.String()
}
