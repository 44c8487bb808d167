package handlers

import (
	"fmt"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// imageField is the multipart field carrying the product image.
const imageField = "image"

type productRequest struct {
	Name        string   `json:"name" form:"name" validate:"required"`
	Price       *float64 `json:"price" form:"price" validate:"required,gte=0"`
	Description string   `json:"description" form:"description" validate:"required"`
	Category    string   `json:"category" form:"category" validate:"required"`
	Image       string   `json:"image" form:"image"`
	Tags        []string `json:"tags" form:"tags"`
}

func (r productRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Price:       *r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Tags:        r.Tags,
	}
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Listing is public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	productRoutes := router.Group("/product")
	productRoutes.Post("/add", requireAuth, h.HandleAdd)
	productRoutes.Post("/update", requireAuth, h.HandleUpdate)
	productRoutes.Post("/delete", requireAuth, h.HandleDelete)
	productRoutes.Get("/", h.HandleList)
}

// HandleAdd creates a product from a JSON or multipart body.
func (h *ProductHandler) HandleAdd(c *fiber.Ctx) error {
	req, upload, closeUpload, err := h.parseProduct(c, "Name, price, description, and category are required")
	if err != nil {
		return err
	}
	defer closeUpload()

	product, err := h.service.Add(c.UserContext(), req.input(), upload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added successfully",
		"data":    product,
	})
}

// HandleUpdate replaces the product given by the _id query parameter.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Query("_id")
	if id == "" {
		return apperror.NewInvalidInput("Product id is required")
	}
	req, upload, closeUpload, err := h.parseProduct(c, "All fields are required")
	if err != nil {
		return err
	}
	defer closeUpload()

	product, err := h.service.Update(c.UserContext(), id, req.input(), upload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"data":    product,
	})
}

// HandleDelete soft-deletes the product given by the _id query parameter.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Query("_id")
	if id == "" {
		return apperror.NewInvalidInput("Product id is required")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// HandleList returns the products that are not deleted.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Products fetched successfully",
		"data":    products,
	})
}

// parseProduct decodes and validates a product body. The returned close
// function releases the uploaded file and is always non-nil.
func (h *ProductHandler) parseProduct(c *fiber.Ctx, message string) (productRequest, *services.ImageUpload, func(), error) {
	noop := func() {}

	var req productRequest
	if err := parseBody(c, &req); err != nil {
		return req, nil, noop, err
	}
	if err := validateStruct(h.validate, req, message); err != nil {
		return req, nil, noop, err
	}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return req, nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, noop, &apperror.Error{Kind: apperror.InvalidInput, Message: "Invalid request body", Err: err}
	}
	files := form.File[imageField]
	if len(files) == 0 {
		return req, nil, noop, nil
	}

	file, err := files[0].Open()
	if err != nil {
		return req, nil, noop, apperror.NewInternal("Image upload failed", fmt.Errorf("open upload: %w", err))
	}
	upload := &services.ImageUpload{Filename: files[0].Filename, Body: file}
	return req, upload, func() { _ = file.Close() }, nil
}
