package models

import "time"

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null"`
	Phone     string `gorm:"size:50;index"`
	Email     string `gorm:"size:100"`
	Address   string `gorm:"size:255"`
	Note      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
