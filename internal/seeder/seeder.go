package seeder

import (
	"database/sql"
	"log"

	"github.com/cradoe/indigene/internal/config"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"

	"github.com/cradoe/gopass"
)

type Seeder struct {
	DB     repository.Database
	Config *config.Config
}

func New(db repository.Database, cfg *config.Config) *Seeder {
	return &Seeder{
		DB:     db,
		Config: cfg,
	}
}

func (seeder *Seeder) Run() {
	seeder.seedSuperAdmin()
}

// seedSuperAdmin guarantees one super admin exists so the first
// deployment can log in and invite the LGA officials. Re-running is a
// no-op once the account is present.
func (seeder *Seeder) seedSuperAdmin() {
	if seeder.Config.SuperAdmin.Email == "" || seeder.Config.SuperAdmin.Password == "" {
		log.Println("Super admin credentials not configured, skipping seed")
		return
	}

	_, found, err := seeder.DB.Admin().GetByEmail(seeder.Config.SuperAdmin.Email)
	if err != nil {
		log.Printf("Error checking for existing super admin: %v", err)
		return
	}
	if found {
		return
	}

	hashedPassword, err := gopass.Hash(seeder.Config.SuperAdmin.Password)
	if err != nil {
		log.Printf("Error hashing super admin password: %v", err)
		return
	}

	admin := &models.Admin{
		FirstName:      seeder.Config.SuperAdmin.Name,
		LastName:       "Admin",
		Email:          seeder.Config.SuperAdmin.Email,
		Role:           models.AdminRoleSuperAdmin,
		Lga:            sql.NullString{},
		HashedPassword: hashedPassword,
	}

	if _, err := seeder.DB.Admin().Insert(admin, nil); err != nil {
		log.Printf("Error seeding super admin: %v", err)
		return
	}

	log.Println("Super admin account seeded")
}
