package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/pkg/apperror"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// PatientService handles patient-related operations
type PatientService struct {
	patientRepo repository.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo repository.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// CreatePatientInput represents the create patient input
type CreatePatientInput struct {
	FirstName string
	LastName  string
	Identity  *string
	Phone     *string
	Email     *string
	Address   *string
	BirthDate *time.Time
}

// CreatePatient creates a new patient
func (s *PatientService) CreatePatient(ctx context.Context, input *CreatePatientInput) (*entity.Patient, error) {
	patient := &entity.Patient{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Identity:  input.Identity,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		BirthDate: input.BirthDate,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}
	return patient, nil
}

// UpdatePatientInput represents the update patient input
type UpdatePatientInput struct {
	FirstName *string
	LastName  *string
	Identity  *string
	Phone     *string
	Email     *string
	Address   *string
	BirthDate *time.Time
}

// UpdatePatient updates a patient. Emitted invoices keep the client
// name they were issued with.
func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, input *UpdatePatientInput) (*entity.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		patient.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		patient.LastName = *input.LastName
	}
	if input.Identity != nil {
		patient.Identity = input.Identity
	}
	if input.Phone != nil {
		patient.Phone = input.Phone
	}
	if input.Email != nil {
		patient.Email = input.Email
	}
	if input.Address != nil {
		patient.Address = input.Address
	}
	if input.BirthDate != nil {
		patient.BirthDate = input.BirthDate
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// DeletePatient soft-deletes a patient
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, id); err != nil {
		return err
	}
	return s.patientRepo.Delete(ctx, id)
}

// ListPatients lists patients with pagination and search
func (s *PatientService) ListPatients(ctx context.Context, params *repository.PatientFilterParams) (*pagination.PaginatedResult[entity.Patient], error) {
	patients, total, err := s.patientRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(patients, p), nil
}
