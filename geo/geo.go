// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geo

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// SRID for every geometry column (WGS 84).
const SRID = 4326

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ParseLonLat parses query-string coordinates into a point.
func ParseLonLat(lonStr, latStr string) (orb.Point, error) {
	if strings.TrimSpace(lonStr) == "" || strings.TrimSpace(latStr) == "" {
		return orb.Point{}, fmt.Errorf("%w: lon and lat are required", ErrInvalidCoordinates)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: lon is not a number", ErrInvalidCoordinates)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: lat is not a number", ErrInvalidCoordinates)
	}
	return NewPoint(lon, lat)
}

// NewPoint validates lon/lat ranges.
func NewPoint(lon, lat float64) (orb.Point, error) {
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return orb.Point{}, fmt.Errorf("%w: lon must be between -180 and 180", ErrInvalidCoordinates)
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("%w: lat must be between -90 and 90", ErrInvalidCoordinates)
	}
	return orb.Point{lon, lat}, nil
}

// Geometry is a PostGIS geometry column value. lib/pq hands geometry
// columns over as hex-encoded EWKB text.
type Geometry struct {
	Geom orb.Geometry
	SRID int
}

// Scan implements sql.Scanner.
func (g *Geometry) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*g = Geometry{}
		return nil
	case []byte:
		return g.decode(v)
	case string:
		return g.decode([]byte(v))
	default:
		return fmt.Errorf("geo: cannot scan %T into Geometry", src)
	}
}

// Value implements driver.Valuer as hex EWKB, which PostGIS accepts for
// geometry parameters.
func (g Geometry) Value() (driver.Value, error) {
	if g.Geom == nil {
		return nil, nil
	}
	b, err := ewkb.Marshal(g.Geom, g.SRID)
	if err != nil {
		return nil, fmt.Errorf("geo: encode ewkb: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (g *Geometry) decode(src []byte) error {
	src = bytes.TrimSpace(src)
	if len(src) == 0 {
		*g = Geometry{}
		return nil
	}

	raw := src
	// Binary transfer starts with the byte order marker (0 or 1);
	// text transfer is hex.
	if src[0] != 0x00 && src[0] != 0x01 {
		raw = make([]byte, hex.DecodedLen(len(src)))
		if _, err := hex.Decode(raw, src); err != nil {
			return fmt.Errorf("geo: decode hex: %w", err)
		}
	}

	geom, srid, err := ewkb.Unmarshal(raw)
	if err != nil {
		return fmt.Errorf("geo: decode ewkb: %w", err)
	}
	g.Geom = geom
	g.SRID = srid
	return nil
}

// WKT renders the geometry as well-known text, or "" when empty.
func (g Geometry) WKT() string {
	if g.Geom == nil {
		return ""
	}
	return wkt.MarshalString(g.Geom)
}

// GeoJSON returns the geometry as a GeoJSON geometry object, or nil.
func (g Geometry) GeoJSON() *geojson.Geometry {
	if g.Geom == nil {
		return nil
	}
	return geojson.NewGeometry(g.Geom)
}

// MarshalJSON encodes the geometry as a WKT string.
func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.Geom == nil {
		return []byte("null"), nil
	}
	return json.Marshal(g.WKT())
}

// UnmarshalJSON accepts the WKT string produced by MarshalJSON.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var text *string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("geo: geometry must be a WKT string: %w", err)
	}
	if text == nil || *text == "" {
		*g = Geometry{}
		return nil
	}
	geom, err := wkt.Unmarshal(*text)
	if err != nil {
		return fmt.Errorf("geo: decode wkt: %w", err)
	}
	*g = Geometry{Geom: geom, SRID: SRID}
	return nil
}

// ToMultiPolygon promotes polygonal geometries to a MultiPolygon.
// Other geometry types report false.
func ToMultiPolygon(g orb.Geometry) (orb.MultiPolygon, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{v}, true
	case orb.MultiPolygon:
		return v, true
	default:
		return nil, false
	}
}
