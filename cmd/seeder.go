package cmd

import (
	"fmt"
	"log"

	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users and projects for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser := func(name, email, role string) int64 {
			var existing userDatamodel.User
			if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
				fmt.Printf("user %s already exists\n", email)
				return existing.ID
			}

			row := &userDatamodel.User{
				Name:         name,
				Email:        email,
				PasswordHash: string(hash),
				Role:         role,
			}
			if err := db.Create(row).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", email, err)
			}
			fmt.Printf("seeded user %s (%s)\n", email, role)
			return row.ID
		}

		janeID := seedUser("Jane Smith", "jane@mail.com", "PM")
		mikeID := seedUser("Mike Johnson", "mike@mail.com", "FM")
		seedUser("Sarah Williams", "sarah@mail.com", "ADMIN")
		johnID := seedUser("John Doe", "john@mail.com", "EMPLOYEE")

		// John reports to Jane and is functionally managed by Mike.
		if err := db.Model(&userDatamodel.User{}).Where("id = ?", johnID).
			Updates(map[string]interface{}{
				"manager_id":            janeID,
				"functional_manager_id": mikeID,
			}).Error; err != nil {
			log.Fatalf("failed to link managers for john: %v", err)
		}

		projects := []struct {
			Name string
			Code string
		}{
			{"Project Alpha", "ALPHA"},
			{"Project Beta", "BETA"},
			{"Project Gamma", "GAMMA"},
			{"Project Delta", "DELTA"},
		}

		for _, p := range projects {
			var exists int64
			db.Table("projects").Where("code = ?", p.Code).Count(&exists)
			if exists > 0 {
				fmt.Printf("project %s already exists\n", p.Code)
				continue
			}

			if err := db.Exec(
				"INSERT INTO projects (name, code, project_manager_id, functional_manager_id, active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				p.Name, p.Code, janeID, mikeID,
			).Error; err != nil {
				log.Fatalf("failed to insert project %s: %v", p.Code, err)
			}
			fmt.Printf("seeded project %s\n", p.Code)
		}

		fmt.Println("seeding complete")
	},
}
