// Package scope holds reusable gorm query scopes.
package scope

import (
	"time"

	"gorm.io/gorm"
)

func Employee(employeeID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("employee_id = ?", employeeID)
	}
}

func Active() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true)
	}
}

// DateRange keeps rows whose column lies in the inclusive date range.
func DateRange(column string, from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
}
