package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/huyhieublock/tradding/internal/domain"
)

// Storage defines the interface for data persistence
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.SymbolInfo{}, &domain.ScreenPref{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Tradding", "data", "tradding.db"), nil
}

// ======================================================================================
// Symbol Operations
// ======================================================================================

// UpsertSymbol creates or updates market metadata
func (s *Storage) UpsertSymbol(info *domain.SymbolInfo) error {
	return s.db.Save(info).Error
}

// GetSymbol retrieves market metadata by symbol
func (s *Storage) GetSymbol(symbol string) (*domain.SymbolInfo, error) {
	var info domain.SymbolInfo
	err := s.db.First(&info, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &info, err
}

// GetAllSymbols retrieves all known markets
func (s *Storage) GetAllSymbols() ([]domain.SymbolInfo, error) {
	var infos []domain.SymbolInfo
	err := s.db.Find(&infos).Error
	return infos, err
}

// ToggleFavorite toggles the favorite status of a market
func (s *Storage) ToggleFavorite(symbol string) (bool, error) {
	var info domain.SymbolInfo
	if err := s.db.First(&info, "symbol = ?", symbol).Error; err != nil {
		return false, err
	}

	info.IsFavorite = !info.IsFavorite
	err := s.db.Save(&info).Error
	return info.IsFavorite, err
}

// DeleteSymbol deletes a market from the database
func (s *Storage) DeleteSymbol(symbol string) error {
	return s.db.Where("symbol = ?", symbol).Delete(&domain.SymbolInfo{}).Error
}

// ======================================================================================
// Screen Preference Operations
// ======================================================================================

// SavePref saves a user screen preference. Satisfies the screen controller's
// persistence hook.
func (s *Storage) SavePref(key, value string) error {
	pref := domain.ScreenPref{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&pref).Error
}

// LoadPrefMap loads all saved preferences as a map
func (s *Storage) LoadPrefMap() (map[string]string, error) {
	var prefs []domain.ScreenPref
	if err := s.db.Find(&prefs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, p := range prefs {
		result[p.Key] = p.Value
	}
	return result, nil
}

// LastSelection restores the persisted symbol/resolution, falling back to
// the given defaults for anything missing or invalid.
func (s *Storage) LastSelection(fallback domain.Selection) domain.Selection {
	prefs, err := s.LoadPrefMap()
	if err != nil {
		return fallback
	}

	sel := fallback
	if sym := prefs[domain.PrefLastSymbol]; sym != "" {
		sel.Symbol = sym
	}
	if raw := prefs[domain.PrefLastResolution]; raw != "" {
		if res, err := domain.ParseResolution(raw); err == nil {
			sel.Resolution = res
		}
	}
	return sel
}
