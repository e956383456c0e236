package db

import (
	"time"
)

// SavedModel is one row per named, versioned model. (owner, name) may have
// many versions, a new save always inserts a new row at an incremented
// version instead of mutating the prior one.
type SavedModel struct {
	Id              string    `gorm:"primaryKey;size:36" json:"id"`
	Owner           string    `gorm:"NOT NULL;index:idx_model_owner;index:idx_model_owner_name;size:64" json:"owner"`
	Name            string    `gorm:"NOT NULL;index:idx_model_owner_name;size:128" json:"name"`
	Version         int64     `gorm:"NOT NULL" json:"version"`
	TargetChip      string    `gorm:"NOT NULL;size:32" json:"target_chip"`
	Metrics         string    `gorm:"type:text" json:"metrics"` // opaque profiling document, no schema enforced
	ModelBlobPath   string    `gorm:"NOT NULL;size:256" json:"model_blob_path"`
	AuxDataBlobPath string    `gorm:"size:256" json:"aux_data_blob_path,omitempty"`
	GraphBlobPath   string    `gorm:"size:256" json:"graph_blob_path,omitempty"`
	IsDeployed      bool      `gorm:"NOT NULL;default:false" json:"is_deployed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (*SavedModel) TableName() string {
	return "saved_model"
}
