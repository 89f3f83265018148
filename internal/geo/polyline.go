package geo

import "github.com/rotisserie/eris"

// DecodePolyline decodes a Google encoded polyline (precision 5) into
// latitude/longitude pairs. This is the geometry format returned by the
// routing service.
func DecodePolyline(encoded string) ([][2]float64, error) {
	var coords [][2]float64
	var lat, lng int64
	i := 0

	readDelta := func() (int64, error) {
		var result int64
		var shift uint
		for {
			if i >= len(encoded) {
				return 0, eris.New("geo: truncated polyline")
			}
			b := int64(encoded[i]) - 63
			i++
			result |= (b & 0x1f) << shift
			if b < 0x20 {
				break
			}
			shift += 5
		}
		if result&1 != 0 {
			return ^(result >> 1), nil
		}
		return result >> 1, nil
	}

	for i < len(encoded) {
		dLat, err := readDelta()
		if err != nil {
			return nil, err
		}
		dLng, err := readDelta()
		if err != nil {
			return nil, err
		}
		lat += dLat
		lng += dLng
		coords = append(coords, [2]float64{float64(lat) / 1e5, float64(lng) / 1e5})
	}

	return coords, nil
}
