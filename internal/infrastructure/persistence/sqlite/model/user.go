package model

type User struct {
	UserID         string `gorm:"column:user_id;primaryKey"`
	Username       string `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email          string `gorm:"column:email;type:text;not null;uniqueIndex"`
	HashedPassword string `gorm:"column:hashed_password;type:text;not null"`
	IsActive       bool   `gorm:"column:is_active;not null;default:1"`
	CreatedAt      string `gorm:"column:created_at;type:text;not null;index"`
}

func (User) TableName() string {
	return "users"
}
