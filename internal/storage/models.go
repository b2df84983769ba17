package storage

// AppState is a generic key/value row for persisted bot state
type AppState struct {
	StateKey   string `gorm:"primaryKey;size:64"`
	StateValue string `gorm:"type:text"`
	UpdatedTS  int64
}

// TableName specifies the table name for AppState
func (AppState) TableName() string {
	return "app_state"
}
