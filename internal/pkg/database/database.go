package database

import "gorm.io/gorm"

var DB *gorm.DB

// GetDB returns the GORM database instance
func GetDB() *gorm.DB {
	return DB
}
