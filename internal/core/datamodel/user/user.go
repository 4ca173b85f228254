package user

import "time"

type User struct {
	ID                  int64     `gorm:"primaryKey"`
	Name                string    `gorm:"column:name;not null"`
	Email               string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash        string    `gorm:"column:password_hash;not null"`
	Role                string    `gorm:"column:role;default:EMPLOYEE"`
	ManagerID           *int64    `gorm:"column:manager_id"`
	FunctionalManagerID *int64    `gorm:"column:functional_manager_id"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
