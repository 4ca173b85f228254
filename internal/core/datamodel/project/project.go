package project

import "time"

type Project struct {
	ID                  int64     `gorm:"primaryKey"`
	Name                string    `gorm:"column:name;not null"`
	Code                string    `gorm:"column:code;uniqueIndex;not null"`
	ProjectManagerID    int64     `gorm:"column:project_manager_id;not null"`
	FunctionalManagerID *int64    `gorm:"column:functional_manager_id"`
	Active              bool      `gorm:"column:active;default:true"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}
