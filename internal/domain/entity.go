package domain

import (
	"time"
)

// SymbolInfo represents metadata for a tradable perp market
type SymbolInfo struct {
	Symbol       string    `gorm:"primaryKey" json:"symbol"` // e.g. "PERP_ETH_USDC"
	BaseToken    string    `json:"base_token"`               // e.g. "ETH"
	Name         string    `json:"name"`
	IconPath     string    `json:"icon_path"`
	IsActive     bool      `json:"is_active" gorm:"index"`   // Active trading status
	IsFavorite   bool      `json:"is_favorite" gorm:"index"` // User favorite status
	LastSyncedAt time.Time `json:"last_synced_at"`           // Last icon sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScreenPref represents user-specific screen state (Key-Value), e.g. the
// last viewed symbol and resolution restored on next launch.
type ScreenPref struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known ScreenPref keys.
const (
	PrefLastSymbol     = "last_symbol"
	PrefLastResolution = "last_resolution"
)
