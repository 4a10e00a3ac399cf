package models

// PluginConfig stores one named setting of a feedback plugin for an assignment.
type PluginConfig struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AssignmentID uint   `gorm:"not null;uniqueIndex:idx_plugin_config_key" json:"assignment_id"`
	Plugin       string `gorm:"size:64;not null;uniqueIndex:idx_plugin_config_key" json:"plugin"`
	Subtype      string `gorm:"size:32;not null;uniqueIndex:idx_plugin_config_key" json:"subtype"`
	Name         string `gorm:"size:64;not null;uniqueIndex:idx_plugin_config_key" json:"name"`
	Value        string `gorm:"type:text" json:"value"`
}

// TableName keeps the plugin config table name stable across model renames.
func (PluginConfig) TableName() string {
	return "assign_plugin_configs"
}
