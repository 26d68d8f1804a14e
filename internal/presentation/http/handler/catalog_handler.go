package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicasantafe/clinica-api/internal/application/service"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles catalog-related HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List handles listing catalog items
func (h *CatalogHandler) List(c *gin.Context) {
	params := &repository.CatalogFilterParams{
		Pagination: paginationParams(c),
		Search:     c.Query("search"),
		ActiveOnly: c.Query("active") == "true",
	}

	result, err := h.catalogService.ListCatalogItems(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Catalog items retrieved successfully", result)
}

// Get handles getting a single catalog item
func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid catalog item ID")
		return
	}

	item, err := h.catalogService.GetCatalogItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog item retrieved successfully", item)
}

// Create handles creating a catalog item
func (h *CatalogHandler) Create(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required"`
		Code        string          `json:"code" binding:"required"`
		Description *string         `json:"description"`
		Price       decimal.Decimal `json:"price" binding:"required"`
		Active      *bool           `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.catalogService.CreateCatalogItem(c.Request.Context(), &service.CreateCatalogItemInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Catalog item created successfully", item)
}

// Update handles updating a catalog item
func (h *CatalogHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid catalog item ID")
		return
	}

	var req struct {
		Name        *string          `json:"name"`
		Code        *string          `json:"code"`
		Description *string          `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		Active      *bool            `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.catalogService.UpdateCatalogItem(c.Request.Context(), id, &service.UpdateCatalogItemInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog item updated successfully", item)
}

// Delete handles deleting a catalog item
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid catalog item ID")
		return
	}

	if err := h.catalogService.DeleteCatalogItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// CreateVariant handles adding a variant to a catalog item
func (h *CatalogHandler) CreateVariant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid catalog item ID")
		return
	}

	var req struct {
		Name  string          `json:"name" binding:"required"`
		Price decimal.Decimal `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	variant, err := h.catalogService.CreateVariant(c.Request.Context(), id, &service.VariantInput{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Variant created successfully", variant)
}

// UpdateVariant handles updating a variant
func (h *CatalogHandler) UpdateVariant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid catalog item ID")
		return
	}
	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		response.BadRequest(c, "Invalid variant ID")
		return
	}

	var req struct {
		Name  string          `json:"name" binding:"required"`
		Price decimal.Decimal `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	variant, err := h.catalogService.UpdateVariant(c.Request.Context(), id, variantID, &service.VariantInput{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Variant updated successfully", variant)
}

// DeleteVariant handles deleting a variant
func (h *CatalogHandler) DeleteVariant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid catalog item ID")
		return
	}
	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		response.BadRequest(c, "Invalid variant ID")
		return
	}

	if err := h.catalogService.DeleteVariant(c.Request.Context(), id, variantID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
