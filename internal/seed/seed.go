// Package seed installs a small demo floor plan and menu for fresh
// deployments.
package seed

import (
	"github.com/bwmarrin/snowflake"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"gorm.io/gorm"
)

// EnsureDemoData populates dining tables and a starter menu once. A
// database that already has tables is left untouched.
func EnsureDemoData(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&tabledomain.Table{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		tables := []tabledomain.Table{
			{ID: node.Generate(), TableNumber: "1", SeatingCapacity: 2, TableType: tabledomain.TableTypeRegular, LocationArea: "window", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "2", SeatingCapacity: 2, TableType: tabledomain.TableTypeRegular, LocationArea: "window", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "3", SeatingCapacity: 4, TableType: tabledomain.TableTypeRegular, LocationArea: "hall", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "4", SeatingCapacity: 4, TableType: tabledomain.TableTypeRegular, LocationArea: "hall", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "5", SeatingCapacity: 6, TableType: tabledomain.TableTypeBar, LocationArea: "hall", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "6", SeatingCapacity: 8, TableType: tabledomain.TableTypePrivate, LocationArea: "mezzanine", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "7", SeatingCapacity: 4, TableType: tabledomain.TableTypeOutdoor, LocationArea: "terrace", Status: tabledomain.StatusAvailable, IsActive: true},
			{ID: node.Generate(), TableNumber: "8", SeatingCapacity: 2, TableType: tabledomain.TableTypeOutdoor, LocationArea: "terrace", Status: tabledomain.StatusAvailable, IsActive: true},
		}
		if err := tx.Create(&tables).Error; err != nil {
			return err
		}

		starters := menudomain.Category{ID: node.Generate(), Name: "Starters", DisplayOrder: 1, IsActive: true}
		mains := menudomain.Category{ID: node.Generate(), Name: "Mains", DisplayOrder: 2, IsActive: true}
		beverages := menudomain.Category{ID: node.Generate(), Name: "Beverages", DisplayOrder: 3, IsActive: true}
		if err := tx.Create(&[]menudomain.Category{starters, mains, beverages}).Error; err != nil {
			return err
		}

		items := []menudomain.Item{
			{ID: node.Generate(), CategoryID: starters.ID, Name: "Paneer Tikka", Price: 220, PreparationTime: 15, IsVeg: true, IsSpicy: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: starters.ID, Name: "Chicken 65", Price: 260, PreparationTime: 18, IsSpicy: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: starters.ID, Name: "Veg Spring Rolls", Price: 180, PreparationTime: 12, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: mains.ID, Name: "Butter Chicken", Price: 340, PreparationTime: 25, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: mains.ID, Name: "Dal Makhani", Price: 240, PreparationTime: 20, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: mains.ID, Name: "Veg Biryani", Price: 280, PreparationTime: 30, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: mains.ID, Name: "Butter Naan", Price: 60, PreparationTime: 8, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: beverages.ID, Name: "Masala Chai", Price: 40, PreparationTime: 5, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: beverages.ID, Name: "Fresh Lime Soda", Price: 80, PreparationTime: 5, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
			{ID: node.Generate(), CategoryID: beverages.ID, Name: "Mango Lassi", Price: 120, PreparationTime: 7, IsVeg: true, Availability: menudomain.AvailabilityAvailable, IsActive: true},
		}
		return tx.Create(&items).Error
	})
}
