package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform is the advertising network a campaign runs on.
type Platform string

const (
	PlatformGoogleAds Platform = "Google Ads"
	PlatformMeta      Platform = "Meta"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformTwitter   Platform = "Twitter"
	PlatformTikTok    Platform = "TikTok"
)

// Platforms lists every accepted platform in display order.
var Platforms = []Platform{PlatformGoogleAds, PlatformMeta, PlatformLinkedIn, PlatformTwitter, PlatformTikTok}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusActive    Status = "Active"
	StatusPaused    Status = "Paused"
	StatusCompleted Status = "Completed"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusActive, StatusPaused, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Campaign represents a marketing campaign.
// Budget is denominated in USD with two fractional digits.
type Campaign struct {
	ID        int64
	Name      string
	Platform  Platform
	Budget    decimal.Decimal
	Status    Status
	StartDate Date
	EndDate   Date
	CreatedAt time.Time
	UpdatedAt time.Time
}
