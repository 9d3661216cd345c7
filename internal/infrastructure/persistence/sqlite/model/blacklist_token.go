package model

// BlacklistToken marks a JWT as revoked. Expire is kept so stale rows can be
// purged once the token would have lapsed on its own anyway.
type BlacklistToken struct {
	Token     string `gorm:"column:token;primaryKey"`
	Expire    string `gorm:"column:expire;type:text;not null;index"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (BlacklistToken) TableName() string {
	return "blacklist_tokens"
}
