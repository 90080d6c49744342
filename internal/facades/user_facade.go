package facades

import (
	"log"
	"math"

	"userdir/internal/models"
	"userdir/internal/services"
)

// Generator supplies synthetic users from the remote random-user
// service. Satisfied by *randomuser.Client.
type Generator interface {
	Fetch(count int) ([]models.User, error)
}

// UserFacade composes the lifecycle service and the random-user
// generator behind the request-shaped surface the handlers call. It
// never reclassifies errors from its collaborators.
type UserFacade struct {
	userService *services.UserService
	generator   Generator
}

// NewUserFacade creates a new UserFacade.
func NewUserFacade(userService *services.UserService, generator Generator) *UserFacade {
	return &UserFacade{
		userService: userService,
		generator:   generator,
	}
}

// ListUsers retrieves one page of users.
func (f *UserFacade) ListUsers(page, size int) (*models.Page, error) {
	return f.userService.ListUsers(page, size)
}

// GetUserByUsername retrieves a single user.
func (f *UserFacade) GetUserByUsername(username string) (*models.User, error) {
	return f.userService.GetUserByUsername(username)
}

// CreateUser creates a new user.
func (f *UserFacade) CreateUser(user *models.User) (*models.User, error) {
	return f.userService.CreateUser(user)
}

// UpdateUser overwrites an existing user's fields.
func (f *UserFacade) UpdateUser(user *models.User) (*models.User, error) {
	return f.userService.UpdateUser(user)
}

// DeleteUser removes a user by their username.
func (f *UserFacade) DeleteUser(username string) error {
	return f.userService.DeleteUser(username)
}

// GenerateAndStoreUsers fetches count synthetic users from the remote
// generator and persists them as a batch. This write path skips the
// per-record Conflict check of CreateUser; a username clash is a
// store-level failure.
func (f *UserFacade) GenerateAndStoreUsers(count int) ([]models.User, error) {
	users, err := f.generator.Fetch(count)
	if err != nil {
		return nil, err
	}
	return f.userService.SaveAllUsers(users)
}

// UserTree loads every stored user and groups them by country, state,
// and city. Keys match exactly (case-sensitive, no normalization) and
// each leaf list keeps the store's listing order, so every record
// lands in exactly one leaf.
func (f *UserFacade) UserTree() (models.UserTree, error) {
	page, err := f.userService.ListUsers(0, math.MaxInt)
	if err != nil {
		return nil, err
	}

	log.Printf("Building user tree from %d users", len(page.Items))
	tree := make(models.UserTree)
	for _, user := range page.Items {
		states, ok := tree[user.Country]
		if !ok {
			states = make(map[string]map[string][]models.User)
			tree[user.Country] = states
		}
		cities, ok := states[user.State]
		if !ok {
			cities = make(map[string][]models.User)
			states[user.State] = cities
		}
		cities[user.City] = append(cities[user.City], user)
	}
	return tree, nil
}
