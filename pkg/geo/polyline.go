package geo

import (
	gopolyline "github.com/twpayne/go-polyline"
)

// PolylineFromCoords. encode coordinates with the Google polyline algorithm,
// the shape format route DTOs carry to map clients.
func PolylineFromCoords(coords []Coordinate) string {
	flat := make([][]float64, len(coords))
	for i, c := range coords {
		flat[i] = []float64{c.Lat, c.Lon}
	}
	return string(gopolyline.EncodeCoords(flat))
}
