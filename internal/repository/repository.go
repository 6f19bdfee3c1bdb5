package repository

import (
	"github.com/mlevchenko/riskscan/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Identity IdentityRepository
	Content  ContentRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Identity: NewIdentityRepository(db),
		Content:  NewContentRepository(db),
	}
}
