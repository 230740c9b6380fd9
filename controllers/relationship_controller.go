package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"opnlend/config"
	"opnlend/database"
	"opnlend/models"
	"opnlend/services"
)

// RelationshipController обрабатывает запросы реестра аффилированных лиц
type RelationshipController struct {
	relationshipService *services.RelationshipService
}

// NewRelationshipController создает новый экземпляр RelationshipController
func NewRelationshipController(db *database.Database, cfg *config.Config) *RelationshipController {
	return &RelationshipController{
		relationshipService: services.NewRelationshipService(db.DB, cfg),
	}
}

// writeServiceError отправляет ошибку сервиса: ошибки валидации уходят
// клиенту структурированным JSON с кодом 400
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(validationErr)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// writeJSON отправляет успешный ответ
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// CreateAffiliateRequest представляет запрос на создание аффилированного лица
type CreateAffiliateRequest struct {
	AffiliateCode string `json:"affiliateCode"`
	AffiliateType string `json:"affiliateType"`
}

// CreateAffiliate обрабатывает запрос на создание аффилированного лица
func (c *RelationshipController) CreateAffiliate(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto CreateAffiliateRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Создаем аффилированное лицо
	affiliate := &models.Affiliate{
		AffiliateCode: dto.AffiliateCode,
		AffiliateType: models.AffiliateType(dto.AffiliateType),
	}
	if err := c.relationshipService.CreateAffiliate(affiliate); err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	writeJSON(w, http.StatusCreated, affiliate)
}

// GetAffiliate обрабатывает запрос на получение аффилированного лица по коду
func (c *RelationshipController) GetAffiliate(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	affiliate, err := c.relationshipService.GetAffiliateByCode(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, affiliate)
}

// GetAffiliates обрабатывает запрос на получение всех аффилированных лиц
func (c *RelationshipController) GetAffiliates(w http.ResponseWriter, r *http.Request) {
	affiliates, err := c.relationshipService.GetAllAffiliates()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, affiliates)
}

// DeleteAffiliate обрабатывает запрос на удаление аффилированного лица
func (c *RelationshipController) DeleteAffiliate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid affiliate id", http.StatusBadRequest)
		return
	}

	if err := c.relationshipService.DeleteAffiliate(uint(id)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateIndividualRequest представляет запрос на создание физического лица
type CreateIndividualRequest struct {
	AffiliateID         uint    `json:"affiliateId"`
	FirstName           string  `json:"firstName"`
	MiddleName          *string `json:"middleName"`
	LastName            string  `json:"lastName"`
	SSN                 string  `json:"ssn"`
	DateOfBirth         *string `json:"dateOfBirth"`
	Address1            string  `json:"address1"`
	Address2            *string `json:"address2"`
	City                string  `json:"city"`
	State               string  `json:"state"`
	ZipCode             string  `json:"zipCode"`
	County              string  `json:"county"`
	Country             string  `json:"country"`
	Email               string  `json:"email"`
	JointlyReported     string  `json:"jointlyReported"`
	JointlyReportedCode *string `json:"jointlyReportedCode"`
}

// CreateIndividual обрабатывает запрос на создание физического лица
func (c *RelationshipController) CreateIndividual(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto CreateIndividualRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	individual := &models.Individual{
		AffiliateID:         dto.AffiliateID,
		FirstName:           dto.FirstName,
		MiddleName:          dto.MiddleName,
		LastName:            dto.LastName,
		Address1:            dto.Address1,
		Address2:            dto.Address2,
		City:                dto.City,
		State:               dto.State,
		ZipCode:             dto.ZipCode,
		County:              dto.County,
		Country:             dto.Country,
		Email:               dto.Email,
		JointlyReported:     models.JointlyReported(dto.JointlyReported),
		JointlyReportedCode: dto.JointlyReportedCode,
	}
	if dto.DateOfBirth != nil {
		parsed, err := time.Parse("2006-01-02", *dto.DateOfBirth)
		if err != nil {
			http.Error(w, "Invalid dateOfBirth format", http.StatusBadRequest)
			return
		}
		individual.DateOfBirth = &parsed
	}

	// Создаем физическое лицо; SSN шифруется сервисом
	if err := c.relationshipService.CreateIndividual(individual, dto.SSN); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, individual)
}

// GetIndividual обрабатывает запрос на получение физического лица
func (c *RelationshipController) GetIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		http.Error(w, "Invalid individual uuid", http.StatusBadRequest)
		return
	}

	individual, err := c.relationshipService.GetIndividualByUUID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, individual)
}

// CreateBusinessRequest представляет запрос на создание юридического лица
type CreateBusinessRequest struct {
	AffiliateID      uint    `json:"affiliateId"`
	EntityName       string  `json:"entityName"`
	BusinessType     string  `json:"businessType"`
	EIN              string  `json:"ein"`
	StateOfFormation string  `json:"stateOfFormation"`
	DateOfFormation  *string `json:"dateOfFormation"`
	Address1         string  `json:"address1"`
	Address2         *string `json:"address2"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	ZipCode          string  `json:"zipCode"`
	County           string  `json:"county"`
	Country          string  `json:"country"`
}

// CreateBusiness обрабатывает запрос на создание юридического лица
func (c *RelationshipController) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	business := &models.Business{
		AffiliateID:      dto.AffiliateID,
		EntityName:       dto.EntityName,
		BusinessType:     models.BusinessType(dto.BusinessType),
		StateOfFormation: dto.StateOfFormation,
		Address1:         dto.Address1,
		Address2:         dto.Address2,
		City:             dto.City,
		State:            dto.State,
		ZipCode:          dto.ZipCode,
		County:           dto.County,
		Country:          dto.Country,
	}
	if dto.DateOfFormation != nil {
		parsed, err := time.Parse("2006-01-02", *dto.DateOfFormation)
		if err != nil {
			http.Error(w, "Invalid dateOfFormation format", http.StatusBadRequest)
			return
		}
		business.DateOfFormation = &parsed
	}

	// Создаем юридическое лицо; EIN шифруется сервисом
	if err := c.relationshipService.CreateBusiness(business, dto.EIN); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, business)
}

// GetBusiness обрабатывает запрос на получение юридического лица
func (c *RelationshipController) GetBusiness(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		http.Error(w, "Invalid business uuid", http.StatusBadRequest)
		return
	}

	business, err := c.relationshipService.GetBusinessByUUID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, business)
}

// CreateOwnershipRequest представляет запрос на создание записи о владении
type CreateOwnershipRequest struct {
	AffiliateID         uint    `json:"affiliateId"`
	OwnerIndividualUUID *string `json:"ownerIndividualUuid"`
	OwnerBusinessUUID   *string `json:"ownerBusinessUuid"`
	OwnershipPercentage string  `json:"ownershipPercentage"`
}

// CreateOwnership обрабатывает запрос на создание записи о владении
func (c *RelationshipController) CreateOwnership(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto CreateOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	percentage, err := decimal.NewFromString(dto.OwnershipPercentage)
	if err != nil {
		http.Error(w, "Invalid ownershipPercentage", http.StatusBadRequest)
		return
	}

	ownership := &models.BeneficialOwnership{
		AffiliateID:         dto.AffiliateID,
		OwnershipPercentage: percentage,
	}
	if dto.OwnerIndividualUUID != nil {
		id, err := uuid.Parse(*dto.OwnerIndividualUUID)
		if err != nil {
			http.Error(w, "Invalid ownerIndividualUuid", http.StatusBadRequest)
			return
		}
		ownership.OwnerIndividualUUID = &id
	}
	if dto.OwnerBusinessUUID != nil {
		id, err := uuid.Parse(*dto.OwnerBusinessUUID)
		if err != nil {
			http.Error(w, "Invalid ownerBusinessUuid", http.StatusBadRequest)
			return
		}
		ownership.OwnerBusinessUUID = &id
	}

	if err := c.relationshipService.CreateBeneficialOwnership(ownership); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ownership)
}

// GetOwnership обрабатывает запрос на получение структуры владения
func (c *RelationshipController) GetOwnership(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid affiliate id", http.StatusBadRequest)
		return
	}

	ownerships, err := c.relationshipService.GetOwnershipByAffiliate(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ownerships)
}

// GetEffectiveProfile обрабатывает запрос на получение действующего профиля
// физического лица с учетом совместной отчетности
func (c *RelationshipController) GetEffectiveProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		http.Error(w, "Invalid individual uuid", http.StatusBadRequest)
		return
	}

	profile, err := c.relationshipService.EffectiveIndividualProfile(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
