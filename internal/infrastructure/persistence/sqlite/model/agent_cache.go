package model

// AgentCache memoizes validated agent responses keyed by submission digest,
// so resubmitting identical code does not spend another agent call.
// ExpiresAt is an RFC3339Nano UTC timestamp, or empty for entries that never
// expire.
type AgentCache struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
	ExpiresAt string `gorm:"column:expires_at;type:text;not null;default:''"`
}

func (AgentCache) TableName() string {
	return "agent_cache"
}
