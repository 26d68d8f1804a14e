package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicasantafe/clinica-api/internal/application/service"
	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/dto/response"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create handles opening a new pending payment
func (h *PaymentHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		PatientID *uuid.UUID `json:"patient_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), &service.CreatePaymentInput{
		PatientID: req.PatientID,
		UserID:    *userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment created successfully", payment)
}

// List handles listing payments (supports both page-based and cursor-based pagination)
func (h *PaymentHandler) List(c *gin.Context) {
	if cursor := c.Query("cursor"); cursor != "" || c.Query("limit") != "" {
		h.listWithCursor(c)
		return
	}

	params := &repository.PaymentFilterParams{
		Pagination: paginationParams(c),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	applyPaymentFilters(c, &params.Status, &params.PatientID, &params.StartDate, &params.EndDate)

	result, err := h.paymentService.ListPayments(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payments retrieved successfully", result)
}

// listWithCursor handles cursor-based listing for the history view
func (h *PaymentHandler) listWithCursor(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
	cursorParams := &pagination.CursorParams{
		Cursor:    c.Query("cursor"),
		Direction: pagination.CursorDirection(c.DefaultQuery("direction", string(pagination.CursorDirectionNext))),
		Limit:     limit,
	}

	params := &repository.PaymentCursorFilterParams{Cursor: cursorParams}
	applyPaymentFilters(c, &params.Status, &params.PatientID, &params.StartDate, &params.EndDate)

	result, err := h.paymentService.ListPaymentsCursor(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, 200, "Payments retrieved successfully", result)
}

// applyPaymentFilters reads the shared status/patient/date filters
func applyPaymentFilters(c *gin.Context, status **enum.PaymentStatus, patientID **uuid.UUID, startDate, endDate **time.Time) {
	if statusStr := c.Query("status"); statusStr != "" {
		if s, ok := parsePaymentStatus(statusStr); ok {
			*status = &s
		}
	}
	if patientIDStr := c.Query("patient_id"); patientIDStr != "" {
		if id, err := uuid.Parse(patientIDStr); err == nil {
			*patientID = &id
		}
	}
	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if d, err := time.Parse("2006-01-02", startDateStr); err == nil {
			*startDate = &d
		}
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if d, err := time.Parse("2006-01-02", endDateStr); err == nil {
			end := d.AddDate(0, 0, 1)
			*endDate = &end
		}
	}
}

func parsePaymentStatus(s string) (enum.PaymentStatus, bool) {
	switch s {
	case "pending":
		return enum.PaymentStatusPending, true
	case "paid":
		return enum.PaymentStatusPaid, true
	case "cancelled":
		return enum.PaymentStatusCancelled, true
	}
	return enum.PaymentStatusPending, false
}

// Get handles getting a single payment with its details
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment retrieved successfully", payment)
}

// Totals handles the live totals preview of a payment
func (h *PaymentHandler) Totals(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	preview, err := h.paymentService.Totals(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Totals computed successfully", preview)
}

// AddItem handles adding a line item to a pending payment
func (h *PaymentHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	var req struct {
		Source        string          `json:"source" binding:"required,oneof=catalog variant custom"`
		CatalogItemID *uuid.UUID      `json:"catalog_item_id"`
		VariantID     *uuid.UUID      `json:"variant_id"`
		Name          string          `json:"name"`
		UnitPrice     decimal.Decimal `json:"unit_price"`
		Quantity      int             `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment, err := h.paymentService.AddItem(c.Request.Context(), id, &service.AddItemInput{
		Source:        service.ItemSource(req.Source),
		CatalogItemID: req.CatalogItemID,
		VariantID:     req.VariantID,
		Name:          req.Name,
		UnitPrice:     req.UnitPrice,
		Quantity:      req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item added successfully", payment)
}

// RemoveItem handles removing a line item from a pending payment
func (h *PaymentHandler) RemoveItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	payment, err := h.paymentService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", payment)
}

// SetQuantity handles updating a line item's quantity
func (h *PaymentHandler) SetQuantity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment, err := h.paymentService.SetQuantity(c.Request.Context(), id, itemID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quantity updated successfully", payment)
}

// SetDiscount handles setting a discount on a pending payment
func (h *PaymentHandler) SetDiscount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	var req struct {
		Type   string          `json:"type" binding:"required,oneof=percentage absolute"`
		Value  decimal.Decimal `json:"value" binding:"required"`
		Reason *string         `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment, err := h.paymentService.SetDiscount(c.Request.Context(), id, &service.DiscountInput{
		Type:   parseDiscountType(req.Type),
		Value:  req.Value,
		Reason: req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount applied successfully", payment)
}

// ClearDiscount handles removing the discount from a pending payment
func (h *PaymentHandler) ClearDiscount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.ClearDiscount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount removed successfully", payment)
}

func parseDiscountType(s string) enum.DiscountType {
	if s == "absolute" {
		return enum.DiscountTypeAbsolute
	}
	return enum.DiscountTypePercentage
}

// Cancel handles abandoning a pending payment
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment cancelled successfully", payment)
}

// Checkout handles finalizing a pending payment
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	var req struct {
		Method      *string `json:"method" binding:"omitempty,oneof=efectivo tarjeta transferencia"`
		Allocations []struct {
			Method string          `json:"method" binding:"required,oneof=efectivo tarjeta transferencia"`
			Amount decimal.Decimal `json:"amount" binding:"required"`
		} `json:"allocations"`
		Discount *struct {
			Type   string          `json:"type" binding:"required,oneof=percentage absolute"`
			Value  decimal.Decimal `json:"value" binding:"required"`
			Reason *string         `json:"reason"`
		} `json:"discount"`
		AllowEmpty            bool   `json:"allow_empty"`
		UseGenericDescription bool   `json:"use_generic_description"`
		UseRTN                bool   `json:"use_rtn"`
		CompanyName           string `json:"company_name"`
		CompanyRTN            string `json:"company_rtn" binding:"omitempty,rtn"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.CheckoutInput{
		UserID:                *userID,
		Method:                req.Method,
		AllowEmpty:            req.AllowEmpty,
		UseGenericDescription: req.UseGenericDescription,
		UseRTN:                req.UseRTN,
		CompanyName:           req.CompanyName,
		CompanyRTN:            req.CompanyRTN,
	}
	for _, a := range req.Allocations {
		input.Allocations = append(input.Allocations, service.AllocationInput{
			Method: a.Method,
			Amount: a.Amount,
		})
	}
	if req.Discount != nil {
		input.Discount = &service.DiscountInput{
			Type:   parseDiscountType(req.Discount.Type),
			Value:  req.Discount.Value,
			Reason: req.Discount.Reason,
		}
	}

	payment, err := h.paymentService.Checkout(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment completed successfully", payment)
}

// AddRefund handles recording a refund against a paid payment
func (h *PaymentHandler) AddRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
		Reason *string         `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.paymentService.AddRefund(c.Request.Context(), id, &service.RefundInput{
		Amount: req.Amount,
		Reason: req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Refund recorded successfully", result)
}
