// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - ByIDsRequest: ids
  - BioregionsRequest: lon, lat or species_ids
  - MigrateDiscoveriesRequest: userId, discoveries [{id, discoveredAt}]
  - RecordDiscoveryRequest: userId, speciesId, sessionId, counters, score
  - SubmitHighScoreRequest: username, score

# Response Types

  - SpeciesListResponse: species, count (at-point)
  - SpeciesInRadiusResponse: species, count, radius_m
  - ClosestSpeciesResponse: species (with distance_km) or null, GeoJSON geometry
  - BioregionsResponse, ByIDsResponse
  - MigrateDiscoveriesResponse: migrated count plus one result per candidate
  - HighScoresResponse, SubmitHighScoreResponse
  - ErrorResponse: error

# Domain Types

Domain types double as gorm models (TableName methods) for the ORM-backed
tables. Species and Bioregion carry a geo.Geometry that marshals to WKT.

# Migration Statuses

Each migration candidate is reported with one of:

	inserted            new row written
	already_discovered  row existed before this request
	unknown_species     id not in the species catalog
	duplicate           id repeated within the request
	invalid             id <= 0
*/
package models
