// Package geo resolves which countries a route geometry crosses using
// country boundary polygons loaded from a shapefile.
package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// DefaultCodeField is the attribute holding the ISO 3166-1 alpha-2 code
// in Natural Earth country shapefiles.
const DefaultCodeField = "ISO_A2"

// maxSamples caps how many route points are located per lookup.
const maxSamples = 200

type ring struct {
	coords []float64 // flat XY pairs, closed
	minX   float64
	minY   float64
	maxX   float64
	maxY   float64
}

func (r ring) contains(lon, lat float64) bool {
	if lon < r.minX || lon > r.maxX || lat < r.minY || lat > r.maxY {
		return false
	}
	return xy.IsPointInRing(geom.XY, geom.Coord{lon, lat}, r.coords)
}

// CountryShape is the boundary of one country. Hole rings are not
// distinguished from outer rings; at country scale that only misplaces
// points inside enclaves, which the distance fallback tolerates.
type CountryShape struct {
	Code  string
	rings []ring
}

// AddRing appends a boundary ring given as flat lon/lat pairs.
func (c *CountryShape) AddRing(coords []float64) {
	if len(coords) < 6 {
		return
	}
	r := ring{coords: coords, minX: coords[0], minY: coords[1], maxX: coords[0], maxY: coords[1]}
	for i := 2; i < len(coords); i += 2 {
		if coords[i] < r.minX {
			r.minX = coords[i]
		}
		if coords[i] > r.maxX {
			r.maxX = coords[i]
		}
		if coords[i+1] < r.minY {
			r.minY = coords[i+1]
		}
		if coords[i+1] > r.maxY {
			r.maxY = coords[i+1]
		}
	}
	c.rings = append(c.rings, r)
}

// Resolver locates points and route geometries against country shapes.
type Resolver struct {
	shapes []*CountryShape
}

// NewResolver builds a resolver over the given country shapes.
func NewResolver(shapes []*CountryShape) *Resolver {
	return &Resolver{shapes: shapes}
}

// NewResolverFromShapefile loads country boundaries from a shapefile and
// builds a resolver. codeField names the ISO alpha-2 attribute; empty
// means DefaultCodeField.
func NewResolverFromShapefile(path, codeField string) (*Resolver, error) {
	shapes, err := LoadShapefile(path, codeField)
	if err != nil {
		return nil, err
	}
	return NewResolver(shapes), nil
}

// Locate returns the ISO alpha-2 code of the country containing the
// point, or false when no shape contains it.
func (r *Resolver) Locate(lon, lat float64) (string, bool) {
	for _, s := range r.shapes {
		for _, rg := range s.rings {
			if rg.contains(lon, lat) {
				return s.Code, true
			}
		}
	}
	return "", false
}

// CountriesAlong decodes an encoded route polyline and returns the ISO
// codes of the countries it crosses, in travel order without repeats.
func (r *Resolver) CountriesAlong(geometry string) ([]string, error) {
	points, err := DecodePolyline(geometry)
	if err != nil {
		return nil, eris.Wrap(err, "geo: decode route geometry")
	}
	if len(points) == 0 {
		return nil, nil
	}

	step := len(points) / maxSamples
	if step < 1 {
		step = 1
	}

	var codes []string
	seen := make(map[string]bool)
	locate := func(lat, lon float64) {
		code, ok := r.Locate(lon, lat)
		if ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	for i := 0; i < len(points); i += step {
		locate(points[i][0], points[i][1])
	}
	// The final point carries the destination country.
	last := points[len(points)-1]
	locate(last[0], last[1])

	return codes, nil
}

// LoadShapefile reads country polygons from a shapefile, keyed by the
// ISO alpha-2 attribute named by codeField. Records sharing a code are
// merged into one shape.
func LoadShapefile(path, codeField string) ([]*CountryShape, error) {
	if codeField == "" {
		codeField = DefaultCodeField
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := -1
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), codeField) {
			codeIdx = i
			break
		}
	}
	if codeIdx < 0 {
		return nil, eris.Errorf("geo: shapefile field %s not found", codeField)
	}

	byCode := make(map[string]*CountryShape)
	var order []string
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly.NumParts == 0 {
			skipped++
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(strings.TrimRight(reader.Attribute(codeIdx), "\x00")))
		if len(code) != 2 {
			skipped++
			continue
		}

		cs := byCode[code]
		if cs == nil {
			cs = &CountryShape{Code: code}
			byCode[code] = cs
			order = append(order, code)
		}

		for part := int32(0); part < poly.NumParts; part++ {
			start := poly.Parts[part]
			end := int32(len(poly.Points))
			if part+1 < poly.NumParts {
				end = poly.Parts[part+1]
			}
			coords := make([]float64, 0, (end-start)*2)
			for j := start; j < end; j++ {
				coords = append(coords, poly.Points[j].X, poly.Points[j].Y)
			}
			cs.AddRing(coords)
		}
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	shapes := make([]*CountryShape, 0, len(order))
	for _, code := range order {
		shapes = append(shapes, byCode[code])
	}
	return shapes, nil
}
