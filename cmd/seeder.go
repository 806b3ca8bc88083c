package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-tracker/internal/core/storage"
)

const (
	demoEmail    = "demo@example.com"
	demoName     = "Demo User"
	demoPassword = "password"
	demoBudget   = 500
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo user and a handful of expenses for development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := storage.Open(cfg.Database, gormlogger.Warn)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		return seed(db.Gorm, cfg.Security.BCryptCost, clearData)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

func seed(db *gorm.DB, bcryptCost int, wipe bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if wipe {
			if err := tx.Where("1 = 1").Delete(&expenseDatamodel.Expense{}).Error; err != nil {
				return fmt.Errorf("clear expenses: %w", err)
			}
			if err := tx.Where("1 = 1").Delete(&userDatamodel.User{}).Error; err != nil {
				return fmt.Errorf("clear users: %w", err)
			}
			fmt.Println("Cleared existing users and expenses")
		}

		var demo userDatamodel.User
		err := tx.Where("email = ?", demoEmail).Take(&demo).Error
		if err == nil {
			fmt.Println("demo user already exists; skipping")
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := auth.HashPassword(demoPassword, bcryptCost)
		if err != nil {
			return err
		}
		demo = userDatamodel.User{Name: demoName, Email: demoEmail, PasswordHash: hash, Budget: demoBudget}
		if err := tx.Create(&demo).Error; err != nil {
			return fmt.Errorf("insert demo user: %w", err)
		}

		expenses := []*expenseDatamodel.Expense{
			{UserID: demo.ID, Amount: 120.50, Paid: true, Description: strPtr("Groceries"), Category: strPtr("food")},
			{UserID: demo.ID, Amount: 45.00, Paid: false, Description: strPtr("Cinema"), Category: strPtr("entertainment")},
			{UserID: demo.ID, Amount: 300.00, Paid: true, Description: strPtr("Rent share"), Category: strPtr("housing")},
			{UserID: demo.ID, Amount: 18.75, Paid: false, Description: strPtr("Taxi")},
		}
		if err := tx.Create(&expenses).Error; err != nil {
			return fmt.Errorf("insert demo expenses: %w", err)
		}

		fmt.Printf("Seeded %s (password %q) with %d expenses\n", demoEmail, demoPassword, len(expenses))
		return nil
	})
}

func strPtr(s string) *string {
	return &s
}
