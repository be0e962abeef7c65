// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package speciesimport loads species ranges and bioregions from GeoJSON.

Features are converted to rows with their geometry as WKT (polygons are
promoted to multipolygons), copied into a temporary staging table with
COPY and merged into the target table by id in a single transaction.
Features missing an id, a name or a polygonal geometry are skipped and
counted in the Report.
*/
package speciesimport
