// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package speciesimport

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/danielhkuo/biodex/geo"
)

// Kind selects the target table.
type Kind string

const (
	KindSpecies    Kind = "species"
	KindBioregions Kind = "bioregions"
)

// ParseKind validates a --kind value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSpecies, KindBioregions:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want species or bioregions)", s)
	}
}

// Skip reasons reported in Report.Skipped.
const (
	SkipMissingID   = "missing_id"
	SkipMissingName = "missing_name"
	SkipGeometry    = "non_polygonal_geometry"
)

// Report counts what happened to each feature.
type Report struct {
	Read     int
	Imported int64
	Skipped  map[string]int
}

func newReport() Report {
	return Report{Skipped: map[string]int{}}
}

func (r *Report) skip(reason string) {
	r.Skipped[reason]++
}

// SkippedTotal is the number of features not imported.
func (r Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

type SpeciesRow struct {
	ID                 int64
	ScientificName     string
	CommonName         *string
	Genus              *string
	Family             *string
	OrderName          *string
	Class              *string
	Category           *string
	Marine             bool
	Terrestrial        bool
	Freshwater         bool
	HabitatDescription *string
	Description        *string
	KeyFact            *string
	WKT                string
}

type BioregionRow struct {
	ID    int64
	Name  string
	Realm *string
	Biome *string
	WKT   string
}

// ReadFeatures decodes a GeoJSON FeatureCollection.
func ReadFeatures(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return fc, nil
}

// SpeciesRows converts features to species rows, skipping (and counting)
// features without an id, a scientific name or a polygonal geometry.
func SpeciesRows(fc *geojson.FeatureCollection) ([]SpeciesRow, Report) {
	report := newReport()
	rows := make([]SpeciesRow, 0, len(fc.Features))

	for _, f := range fc.Features {
		report.Read++

		id, ok := featureID(f)
		if !ok {
			report.skip(SkipMissingID)
			continue
		}
		name := stringProp(f.Properties, "scientific_name", "sci_name", "binomial")
		if name == nil {
			report.skip(SkipMissingName)
			continue
		}
		text, ok := multiPolygonWKT(f)
		if !ok {
			report.skip(SkipGeometry)
			continue
		}

		rows = append(rows, SpeciesRow{
			ID:                 id,
			ScientificName:     *name,
			CommonName:         stringProp(f.Properties, "common_name"),
			Genus:              stringProp(f.Properties, "genus"),
			Family:             stringProp(f.Properties, "family"),
			OrderName:          stringProp(f.Properties, "order_name", "order_"),
			Class:              stringProp(f.Properties, "class"),
			Category:           stringProp(f.Properties, "category"),
			Marine:             boolProp(f.Properties, "marine"),
			Terrestrial:        boolProp(f.Properties, "terrestrial", "terrestial"),
			Freshwater:         boolProp(f.Properties, "freshwater"),
			HabitatDescription: stringProp(f.Properties, "habitat_description"),
			Description:        stringProp(f.Properties, "description"),
			KeyFact:            stringProp(f.Properties, "key_fact"),
			WKT:                text,
		})
	}
	return rows, report
}

// BioregionRows converts features to bioregion rows.
func BioregionRows(fc *geojson.FeatureCollection) ([]BioregionRow, Report) {
	report := newReport()
	rows := make([]BioregionRow, 0, len(fc.Features))

	for _, f := range fc.Features {
		report.Read++

		id, ok := featureID(f)
		if !ok {
			report.skip(SkipMissingID)
			continue
		}
		name := stringProp(f.Properties, "name", "bioregion")
		if name == nil {
			report.skip(SkipMissingName)
			continue
		}
		text, ok := multiPolygonWKT(f)
		if !ok {
			report.skip(SkipGeometry)
			continue
		}

		rows = append(rows, BioregionRow{
			ID:    id,
			Name:  *name,
			Realm: stringProp(f.Properties, "realm"),
			Biome: stringProp(f.Properties, "biome"),
			WKT:   text,
		})
	}
	return rows, report
}

func multiPolygonWKT(f *geojson.Feature) (string, bool) {
	if f.Geometry == nil {
		return "", false
	}
	mp, ok := geo.ToMultiPolygon(f.Geometry)
	if !ok || len(mp) == 0 {
		return "", false
	}
	return wkt.MarshalString(mp), true
}

// featureID takes the "id" property, falling back to the feature id.
func featureID(f *geojson.Feature) (int64, bool) {
	if v, ok := f.Properties["id"]; ok {
		return toID(v)
	}
	return toID(f.ID)
}

func toID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		if id <= 0 || id != math.Trunc(id) || id > math.MaxInt32 {
			return 0, false
		}
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 32)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// stringProp returns the first non-empty string among keys.
func stringProp(props geojson.Properties, keys ...string) *string {
	for _, k := range keys {
		if s, ok := props[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return &s
			}
		}
	}
	return nil
}

func boolProp(props geojson.Properties, keys ...string) bool {
	for _, k := range keys {
		switch v := props[k].(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "t", "yes", "y", "1":
				return true
			}
		}
	}
	return false
}
