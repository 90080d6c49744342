package handlers

import (
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"userdir/internal/apperrors"
	"userdir/internal/facades"
	"userdir/internal/models"
)

// pictureURLPattern restricts picture URLs to http, https, or ftp.
var pictureURLPattern = regexp.MustCompile(`^(https?|ftp)://.+$`)

// UserHandler handles HTTP requests for the user directory. It owns
// the validation boundary: domain objects only reach the facade after
// their field formats check out.
type UserHandler struct {
	facade   *facades.UserFacade
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(facade *facades.UserFacade) *UserHandler {
	validate := validator.New()
	// The stock url tag accepts any scheme, so the picture constraint
	// gets its own rule.
	_ = validate.RegisterValidation("picurl", func(fl validator.FieldLevel) bool {
		return pictureURLPattern.MatchString(fl.Field().String())
	})
	return &UserHandler{
		facade:   facade,
		validate: validate,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Get("/tree/", h.HandleUserTree)
	userRoutes.Get("/generate/:number", h.HandleGenerateUsers)
	userRoutes.Get("/:username", h.HandleGetUser)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Put("/", h.HandleUpdateUser)
	userRoutes.Delete("/:username", h.HandleDeleteUser)
}

// HandleListUsers returns one page of users. Defaults: page 0, size 20.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)
	if page < 0 || size < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "page must be >= 0 and size must be >= 1",
		})
	}

	result, err := h.facade.ListUsers(page, size)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(result)
}

// HandleGetUser returns a single user by their username.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	username := c.Params("username")
	user, err := h.facade.GetUserByUsername(username)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(user)
}

// HandleCreateUser creates a new user from the request body.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	user, resp := h.parseAndValidate(c)
	if user == nil {
		return resp // 400 response already written
	}

	created, err := h.facade.CreateUser(user)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateUser overwrites an existing user's fields. The username
// in the body selects the record; it is never changed.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	user, resp := h.parseAndValidate(c)
	if user == nil {
		return resp
	}

	updated, err := h.facade.UpdateUser(user)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteUser removes a user by their username.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := h.facade.DeleteUser(username); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully.",
	})
}

// HandleGenerateUsers fetches a batch of synthetic users from the
// remote generator and persists them. Non-positive counts never reach
// the remote service.
func (h *UserHandler) HandleGenerateUsers(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "number must be a positive integer",
		})
	}

	users, err := h.facade.GenerateAndStoreUsers(number)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(users)
}

// HandleUserTree returns all users grouped by country, state, and city.
func (h *UserHandler) HandleUserTree(c *fiber.Ctx) error {
	tree, err := h.facade.UserTree()
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(tree)
}

// parseAndValidate decodes a user from the request body and checks its
// field formats. On failure it writes the 400 response itself and
// returns a nil user; the second value is the write result to hand
// back to Fiber.
func (h *UserHandler) parseAndValidate(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		log.Printf("Error parsing user request body: %v", err)
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	user.ID = 0 // the surrogate ID is never accepted from the outside

	if err := h.validate.Struct(user); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag())
		}
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return &user, nil
}

// writeError converts a classified error into its one observable
// status and message. Unclassified errors become a generic 500.
func (h *UserHandler) writeError(c *fiber.Ctx, err error) error {
	kind := apperrors.KindOf(err)
	log.Printf("Request failed (%s): %v", kind, err)
	return c.Status(apperrors.HTTPStatus(kind)).JSON(fiber.Map{
		"error": apperrors.Message(err),
	})
}
