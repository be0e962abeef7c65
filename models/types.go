package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/danielhkuo/biodex/geo"
)

// Migration outcome constants
const (
	MigrateInserted          = "inserted"
	MigrateAlreadyDiscovered = "already_discovered"
	MigrateUnknownSpecies    = "unknown_species"
	MigrateDuplicate         = "duplicate"
	MigrateInvalid           = "invalid"
)

// MigrateBatchLimitFormat is the 400 message for an oversized migrate batch.
// Clients parse the limit back out of it.
const MigrateBatchLimitFormat = "at most %d discoveries per request"

// Username length bounds (after trimming)
const (
	UsernameMinLen = 2
	UsernameMaxLen = 25
)

// Request types

type ByIDsRequest struct {
	IDs []int64 `json:"ids"`
}

type BioregionsRequest struct {
	Lon        *float64 `json:"lon"`
	Lat        *float64 `json:"lat"`
	SpeciesIDs []int64  `json:"species_ids"`
}

type DiscoveryCandidate struct {
	ID           int64      `json:"id"`
	DiscoveredAt *time.Time `json:"discoveredAt,omitempty"`
}

type MigrateDiscoveriesRequest struct {
	UserID      string               `json:"userId"`
	Discoveries []DiscoveryCandidate `json:"discoveries"`
}

type RecordDiscoveryRequest struct {
	UserID           string `json:"userId"`
	SpeciesID        int64  `json:"speciesId"`
	SessionID        string `json:"sessionId"`
	CluesRevealed    int    `json:"cluesRevealed"`
	IncorrectGuesses int    `json:"incorrectGuesses"`
	Score            int    `json:"score"`
}

// Score is a pointer so a missing score can be told apart from 0
type SubmitHighScoreRequest struct {
	Username string   `json:"username"`
	Score    *float64 `json:"score"`
}

// Response types

type SpeciesListResponse struct {
	Species []Species `json:"species"`
	Count   int       `json:"count"`
}

type SpeciesInRadiusResponse struct {
	Species []Species `json:"species"`
	Count   int       `json:"count"`
	RadiusM float64   `json:"radius_m"`
}

type ClosestSpeciesResponse struct {
	Species  *Species `json:"species"`
	Geometry any      `json:"geometry"`
}

type ByIDsResponse struct {
	Species []Species `json:"species"`
}

type BioregionsResponse struct {
	Bioregions []Bioregion `json:"bioregions"`
}

type MigrateResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type MigrateDiscoveriesResponse struct {
	Migrated int             `json:"migrated"`
	Results  []MigrateResult `json:"results"`
}

type RecordDiscoveryResponse struct {
	Discovery *PlayerDiscovery `json:"discovery,omitempty"`
	Created   bool             `json:"created"`
}

type PlayerDiscoveriesResponse struct {
	Discoveries []PlayerDiscovery `json:"discoveries"`
}

type PlayerStatsResponse struct {
	Stats PlayerStats `json:"stats"`
}

type HighScoresResponse struct {
	Scores []HighScore `json:"scores"`
}

type SubmitHighScoreResponse struct {
	Score HighScore `json:"score"`
}

// Domain types

// Species is read-only reference data; geometry is rendered as WKT
type Species struct {
	ID                 int64        `json:"id" gorm:"primaryKey"`
	ScientificName     string       `json:"scientific_name"`
	CommonName         *string      `json:"common_name"`
	Genus              *string      `json:"genus"`
	Family             *string      `json:"family"`
	OrderName          *string      `json:"order_name"`
	Class              *string      `json:"class"`
	Category           *string      `json:"category"`
	Marine             bool         `json:"marine"`
	Terrestrial        bool         `json:"terrestrial"`
	Freshwater         bool         `json:"freshwater"`
	HabitatDescription *string      `json:"habitat_description"`
	Description        *string      `json:"description"`
	KeyFact            *string      `json:"key_fact"`
	Geometry           geo.Geometry `json:"geometry" gorm:"column:geom"`
	DistanceKm         *float64     `json:"distance_km,omitempty" gorm:"-"`
}

func (Species) TableName() string { return "species" }

type Bioregion struct {
	ID       int64        `json:"id" gorm:"primaryKey"`
	Name     string       `json:"name"`
	Realm    *string      `json:"realm"`
	Biome    *string      `json:"biome"`
	Geometry geo.Geometry `json:"geometry" gorm:"column:geom"`
}

func (Bioregion) TableName() string { return "bioregion" }

// PlayerDiscovery is written once per (player, species) and never updated
type PlayerDiscovery struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	PlayerID         uuid.UUID  `json:"player_id" gorm:"type:uuid"`
	SpeciesID        int64      `json:"species_id"`
	SessionID        *uuid.UUID `json:"session_id,omitempty" gorm:"type:uuid"`
	DiscoveredAt     time.Time  `json:"discovered_at"`
	CluesRevealed    int        `json:"clues_revealed"`
	IncorrectGuesses int        `json:"incorrect_guesses"`
	Score            int        `json:"score"`
}

func (PlayerDiscovery) TableName() string { return "player_discovery" }

// PlayerStats is derived from player_discovery; ClassCounts maps taxonomic
// class to number of discoveries
type PlayerStats struct {
	PlayerID         uuid.UUID         `json:"player_id" gorm:"primaryKey;type:uuid"`
	TotalDiscoveries int               `json:"total_discoveries"`
	TotalScore       int64             `json:"total_score"`
	SessionsPlayed   int               `json:"sessions_played"`
	ClassCounts      datatypes.JSONMap `json:"class_counts" gorm:"type:jsonb"`
	LastDiscoveryAt  *time.Time        `json:"last_discovery_at"`
	UpdatedAt        *time.Time        `json:"updated_at"`
}

func (PlayerStats) TableName() string { return "player_stats" }

type HighScore struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

func (HighScore) TableName() string { return "high_score" }

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
