package config

import "time"

const (
	// Photo ingestion
	MaxPhotoSize = 5 * 1024 * 1024 // reject anything larger before persistence

	// ML advisor
	MLAnalyzeTimeout = 30 * time.Second
	MLHealthTimeout  = 5 * time.Second

	// Listing
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// Stats
	StatsCacheTTL    = 30 * time.Second
	RecentComplaints = 5

	// Routing
	DefaultDivision = "General"
)
