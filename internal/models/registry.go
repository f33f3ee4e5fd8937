package models

import (
	"time"

	"gorm.io/datatypes"
)

// RegistryBlob is the single persisted row backing the local game registry.
// Data holds the whole ticker -> CachedGameMeta mapping as one JSON object;
// every write replaces the full mapping (last write wins).
type RegistryBlob struct {
	Key       string         `gorm:"primaryKey;type:text"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (RegistryBlob) TableName() string {
	return "registry_blobs"
}

// CachedGameMeta is the client-local, unauthoritative record kept per
// ticker. It only ever contributes fields the chain does not return
// cheaply; phase and numeric fields from the chain always win over it.
type CachedGameMeta struct {
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	Contract   string `json:"contract"`
	Creator    string `json:"creator,omitempty"`
	CreationTx string `json:"creation_tx,omitempty"`

	// Legacy field kept for older cache payloads; never consulted when a
	// live phase is available.
	TokenLaunched bool `json:"token_launched,omitempty"`
}
