// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package geo converts between PostGIS geometry values and the text and
// GeoJSON forms returned by the API, and validates query coordinates.
package geo
