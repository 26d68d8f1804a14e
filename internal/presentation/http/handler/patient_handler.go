package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicasantafe/clinica-api/internal/application/service"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/internal/presentation/http/dto/response"
)

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// List handles listing patients
func (h *PatientHandler) List(c *gin.Context) {
	params := &repository.PatientFilterParams{
		Pagination: paginationParams(c),
		Search:     c.Query("search"),
	}

	result, err := h.patientService.ListPatients(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Patients retrieved successfully", result)
}

// Get handles getting a single patient
func (h *PatientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid patient ID")
		return
	}

	patient, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient retrieved successfully", patient)
}

type patientRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Identity  *string `json:"identity"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address"`
	BirthDate *string `json:"birth_date"`
}

func (r *patientRequest) birthDate() (*time.Time, error) {
	if r.BirthDate == nil || *r.BirthDate == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", *r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create handles creating a patient
func (h *PatientHandler) Create(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	birthDate, err := req.birthDate()
	if err != nil {
		response.BadRequest(c, "Invalid birth date, expected YYYY-MM-DD")
		return
	}

	patient, err := h.patientService.CreatePatient(c.Request.Context(), &service.CreatePatientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Identity:  req.Identity,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		BirthDate: birthDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Patient created successfully", patient)
}

// Update handles updating a patient
func (h *PatientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid patient ID")
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Identity  *string `json:"identity"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email" binding:"omitempty,email"`
		Address   *string `json:"address"`
		BirthDate *string `json:"birth_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdatePatientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Identity:  req.Identity,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			response.BadRequest(c, "Invalid birth date, expected YYYY-MM-DD")
			return
		}
		input.BirthDate = &d
	}

	patient, err := h.patientService.UpdatePatient(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient updated successfully", patient)
}

// Delete handles deleting a patient
func (h *PatientHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid patient ID")
		return
	}

	if err := h.patientService.DeletePatient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
