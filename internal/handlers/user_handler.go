package handlers

import (
	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required"`
	LastName  string `json:"lastName" form:"lastName"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Phone     string `json:"phone" form:"phone"`
	Password  string `json:"password" form:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type updateUserRequest struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required"`
	LastName  string `json:"lastName" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required"`
	Phone     string `json:"phone" form:"phone" validate:"required"`
}

type updateAddressRequest struct {
	Email   string `json:"email" form:"email" validate:"required"`
	House   string `json:"house" form:"house" validate:"required"`
	Street  string `json:"street" form:"street" validate:"required"`
	City    string `json:"city" form:"city" validate:"required"`
	State   string `json:"state" form:"state" validate:"required"`
	Pincode string `json:"pincode" form:"pincode" validate:"required"`
}

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the user routes. Registration and login are public.
func (h *UserHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/update", requireAuth, h.HandleUpdate)
	userRoutes.Post("/update/address", requireAuth, h.HandleUpdateAddress)
	userRoutes.Post("/delete", requireAuth, h.HandleDelete)
	userRoutes.Get("/", requireAuth, h.HandleGet)
	userRoutes.Get("/list", requireAuth, h.HandleList)
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "First name, email, and password are required"); err != nil {
		return err
	}

	user, err := h.service.Register(c.UserContext(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// HandleLogin checks credentials and returns a bearer token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "All fields are required"); err != nil {
		return err
	}

	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"data":      result.User,
	})
}

// HandleUpdate replaces the profile of the user identified by email.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "All fields are required"); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), services.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user,
	})
}

// HandleUpdateAddress replaces the address of the user identified by email.
func (h *UserHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var req updateAddressRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "All fields are required"); err != nil {
		return err
	}

	user, err := h.service.UpdateAddress(c.UserContext(), req.Email, models.Address{
		House:   req.House,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User address updated successfully",
		"data":    user,
	})
}

// HandleDelete removes the user given by the _id query parameter.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Query("_id")
	if id == "" {
		return apperror.NewInvalidInput("User id is required")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}

// HandleGet returns the user given by the email query parameter or body field.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" && len(c.Body()) > 0 {
		var body struct {
			Email string `json:"email" form:"email"`
		}
		if err := parseBody(c, &body); err != nil {
			return err
		}
		email = body.Email
	}
	if email == "" {
		return apperror.NewInvalidInput("User email is required")
	}

	user, err := h.service.GetByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User found",
		"data":    user,
	})
}

// HandleList returns every user.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Users fetched successfully",
		"data":    users,
	})
}
