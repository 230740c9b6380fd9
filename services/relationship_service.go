package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"opnlend/config"
	"opnlend/models"
	"opnlend/utils"
)

// Верхняя граница доли владения
var hundred = decimal.NewFromInt(100)

// RelationshipService предоставляет методы для работы с реестром
// аффилированных лиц: физических и юридических лиц, структурой владения
// и андеррайтинговыми профилями
type RelationshipService struct {
	db       *gorm.DB
	validate *validator.Validate
	config   *config.Config
}

// NewRelationshipService создает новый экземпляр RelationshipService
func NewRelationshipService(db *gorm.DB, cfg *config.Config) *RelationshipService {
	return &RelationshipService{
		db:       db,
		validate: validator.New(),
		config:   cfg,
	}
}

// CreateAffiliate создает новое аффилированное лицо с уникальным кодом
func (s *RelationshipService) CreateAffiliate(affiliate *models.Affiliate) error {
	if affiliate.AffiliateCode == "" {
		return missingRequired("affiliate_code", "код аффилированного лица обязателен")
	}
	if err := s.validate.Var(string(affiliate.AffiliateType), "oneof=INDIVIDUAL BUSINESS"); err != nil {
		utils.GetMetrics().RecordValidationFailure()
		return invalidEnum("affiliate_type", "недопустимый тип аффилированного лица")
	}

	// Проверяем уникальность кода
	var count int64
	if err := s.db.Model(&models.Affiliate{}).Where("affiliate_code = ?", affiliate.AffiliateCode).Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка проверки кода аффилированного лица: %v", err)
	}
	if count > 0 {
		utils.GetMetrics().RecordValidationFailure()
		return invalidValue("affiliate_code", "код аффилированного лица уже используется")
	}

	if err := s.db.Create(affiliate).Error; err != nil {
		return fmt.Errorf("ошибка создания аффилированного лица: %v", err)
	}

	return nil
}

// GetAffiliateByCode возвращает аффилированное лицо по коду вместе со связанными лицами
func (s *RelationshipService) GetAffiliateByCode(code string) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := s.db.Preload("Individuals").Preload("Businesses").
		Where("affiliate_code = ?", code).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("аффилированное лицо не найдено")
		}
		return nil, fmt.Errorf("ошибка получения аффилированного лица: %v", err)
	}
	return &affiliate, nil
}

// GetAllAffiliates возвращает все аффилированные лица
func (s *RelationshipService) GetAllAffiliates() ([]models.Affiliate, error) {
	var affiliates []models.Affiliate
	if err := s.db.Order("affiliate_code").Find(&affiliates).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения аффилированных лиц: %v", err)
	}
	return affiliates, nil
}

// DeleteAffiliate удаляет аффилированное лицо вместе со всеми связанными записями
func (s *RelationshipService) DeleteAffiliate(id uint) error {
	result := s.db.Delete(&models.Affiliate{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления аффилированного лица: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("аффилированное лицо не найдено")
	}
	return nil
}

// CreateIndividual создает физическое лицо. SSN шифруется перед сохранением,
// в открытом виде номер никогда не пишется в базу.
func (s *RelationshipService) CreateIndividual(individual *models.Individual, ssn string) error {
	if validationErr := s.validateIndividual(individual, ssn); validationErr != nil {
		utils.GetMetrics().RecordValidationFailure()
		return validationErr
	}

	encrypted, err := utils.PGPEncrypt(ssn, s.config.PII.PublicKey)
	if err != nil {
		return fmt.Errorf("ошибка шифрования SSN: %v", err)
	}
	individual.SSNEncrypted = encrypted
	individual.SSNHMAC = utils.GenerateHMAC(ssn, []byte(s.config.PII.HMACKey))

	if err := s.db.Create(individual).Error; err != nil {
		return fmt.Errorf("ошибка создания физического лица: %v", err)
	}

	return nil
}

// validateIndividual проверяет обязательные поля физического лица
func (s *RelationshipService) validateIndividual(individual *models.Individual, ssn string) *ValidationError {
	validationErr := &ValidationError{}

	if individual.FirstName == "" {
		validationErr.Add(ValidationMissingRequiredField, "first_name", "имя обязательно")
	}
	if individual.LastName == "" {
		validationErr.Add(ValidationMissingRequiredField, "last_name", "фамилия обязательна")
	}
	if ssn == "" {
		validationErr.Add(ValidationMissingRequiredField, "ssn", "SSN обязателен")
	}
	if err := s.validate.Var(string(individual.JointlyReported), "oneof=JOINTLY SOLE"); err != nil {
		validationErr.Add(ValidationInvalidEnumValue, "jointly_reported", "недопустимый способ подачи отчетности")
	}
	// Совместная отчетность требует кода связки
	if individual.JointlyReported == models.JointlyReportedJointly &&
		(individual.JointlyReportedCode == nil || *individual.JointlyReportedCode == "") {
		validationErr.Add(ValidationMissingRequiredField, "jointly_reported_code", "код совместной отчетности обязателен при JOINTLY")
	}

	if validationErr.HasErrors() {
		return validationErr
	}
	return nil
}

// GetIndividualByUUID возвращает физическое лицо по идентификатору
func (s *RelationshipService) GetIndividualByUUID(id uuid.UUID) (*models.Individual, error) {
	var individual models.Individual
	if err := s.db.Where("uuid = ?", id).First(&individual).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("физическое лицо не найдено")
		}
		return nil, fmt.Errorf("ошибка получения физического лица: %v", err)
	}
	return &individual, nil
}

// FindIndividualBySSN ищет физическое лицо по SSN через HMAC-индекс,
// не расшифровывая сохраненные значения
func (s *RelationshipService) FindIndividualBySSN(ssn string) (*models.Individual, error) {
	hmac := utils.GenerateHMAC(ssn, []byte(s.config.PII.HMACKey))

	var individual models.Individual
	if err := s.db.Where("ssn_hmac = ?", hmac).First(&individual).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("физическое лицо не найдено")
		}
		return nil, fmt.Errorf("ошибка поиска по SSN: %v", err)
	}
	return &individual, nil
}

// DecryptIndividualSSN расшифровывает SSN физического лица
func (s *RelationshipService) DecryptIndividualSSN(individual *models.Individual) (string, error) {
	ssn, err := utils.PGPDecrypt(individual.SSNEncrypted, s.config.PII.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("ошибка расшифровки SSN: %v", err)
	}
	return ssn, nil
}

// CreateBusiness создает юридическое лицо. EIN шифруется перед сохранением.
func (s *RelationshipService) CreateBusiness(business *models.Business, ein string) error {
	validationErr := &ValidationError{}
	if business.EntityName == "" {
		validationErr.Add(ValidationMissingRequiredField, "entity_name", "наименование предприятия обязательно")
	}
	if ein == "" {
		validationErr.Add(ValidationMissingRequiredField, "ein", "EIN обязателен")
	}
	if err := s.validate.Var(string(business.BusinessType),
		"oneof=C-CORP S-CORP LLC PARTNERSHIP 'SOLE PROP.' NON-PROFIT GOVERNMENT"); err != nil {
		validationErr.Add(ValidationInvalidEnumValue, "business_type", "недопустимая организационно-правовая форма")
	}
	if validationErr.HasErrors() {
		utils.GetMetrics().RecordValidationFailure()
		return validationErr
	}

	encrypted, err := utils.PGPEncrypt(ein, s.config.PII.PublicKey)
	if err != nil {
		return fmt.Errorf("ошибка шифрования EIN: %v", err)
	}
	business.EINEncrypted = encrypted
	business.EINHMAC = utils.GenerateHMAC(ein, []byte(s.config.PII.HMACKey))

	if err := s.db.Create(business).Error; err != nil {
		return fmt.Errorf("ошибка создания юридического лица: %v", err)
	}

	return nil
}

// GetBusinessByUUID возвращает юридическое лицо по идентификатору
func (s *RelationshipService) GetBusinessByUUID(id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := s.db.Where("uuid = ?", id).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("юридическое лицо не найдено")
		}
		return nil, fmt.Errorf("ошибка получения юридического лица: %v", err)
	}
	return &business, nil
}

// FindBusinessByEIN ищет юридическое лицо по EIN через HMAC-индекс
func (s *RelationshipService) FindBusinessByEIN(ein string) (*models.Business, error) {
	hmac := utils.GenerateHMAC(ein, []byte(s.config.PII.HMACKey))

	var business models.Business
	if err := s.db.Where("ein_hmac = ?", hmac).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("юридическое лицо не найдено")
		}
		return nil, fmt.Errorf("ошибка поиска по EIN: %v", err)
	}
	return &business, nil
}

// CreateBeneficialOwnership создает запись о доле владения.
// Владелец задается ровно одной из двух ссылок.
func (s *RelationshipService) CreateBeneficialOwnership(ownership *models.BeneficialOwnership) error {
	hasIndividual := ownership.OwnerIndividualUUID != nil
	hasBusiness := ownership.OwnerBusinessUUID != nil
	if hasIndividual == hasBusiness {
		utils.GetMetrics().RecordValidationFailure()
		return invalidValue("owner", "владельцем должно быть ровно одно физическое или юридическое лицо")
	}

	if ownership.OwnershipPercentage.IsNegative() || ownership.OwnershipPercentage.GreaterThan(hundred) {
		utils.GetMetrics().RecordValidationFailure()
		return invalidValue("ownership_percentage", "доля владения должна быть в пределах от 0 до 100")
	}

	if err := s.db.Create(ownership).Error; err != nil {
		return fmt.Errorf("ошибка создания записи о владении: %v", err)
	}

	return nil
}

// GetOwnershipByAffiliate возвращает структуру владения аффилированного лица
func (s *RelationshipService) GetOwnershipByAffiliate(affiliateID uint) ([]models.BeneficialOwnership, error) {
	var ownerships []models.BeneficialOwnership
	if err := s.db.Preload("OwnerIndividual").Preload("OwnerBusiness").
		Where("affiliate_id = ?", affiliateID).Find(&ownerships).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения структуры владения: %v", err)
	}
	return ownerships, nil
}

// SaveIndividualProfile сохраняет индивидуальный профиль
func (s *RelationshipService) SaveIndividualProfile(profile *models.IndividualProfile) error {
	if err := s.db.Save(profile).Error; err != nil {
		return fmt.Errorf("ошибка сохранения профиля физического лица: %v", err)
	}
	return nil
}

// SaveJointIndividualProfile сохраняет общий профиль совместной отчетности
func (s *RelationshipService) SaveJointIndividualProfile(profile *models.JointIndividualProfile) error {
	if profile.JointlyReportedCode == "" {
		return missingRequired("jointly_reported_code", "код совместной отчетности обязателен")
	}
	if err := s.db.Save(profile).Error; err != nil {
		return fmt.Errorf("ошибка сохранения совместного профиля: %v", err)
	}
	return nil
}

// SaveBusinessProfile сохраняет профиль предприятия
func (s *RelationshipService) SaveBusinessProfile(profile *models.BusinessProfile) error {
	if err := s.db.Save(profile).Error; err != nil {
		return fmt.Errorf("ошибка сохранения профиля предприятия: %v", err)
	}
	return nil
}

// EffectiveIndividualProfile возвращает действующий профиль физического лица.
// Для лиц с совместной отчетностью возвращается общий профиль по коду связки,
// иначе индивидуальный.
func (s *RelationshipService) EffectiveIndividualProfile(individualUUID uuid.UUID) (interface{}, error) {
	individual, err := s.GetIndividualByUUID(individualUUID)
	if err != nil {
		return nil, err
	}

	if individual.JointlyReported == models.JointlyReportedJointly && individual.JointlyReportedCode != nil {
		var joint models.JointIndividualProfile
		if err := s.db.Where("jointly_reported_code = ?", *individual.JointlyReportedCode).First(&joint).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("совместный профиль не найден")
			}
			return nil, fmt.Errorf("ошибка получения совместного профиля: %v", err)
		}
		return &joint, nil
	}

	var profile models.IndividualProfile
	if err := s.db.Where("individual_uuid = ?", individualUUID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("профиль физического лица не найден")
		}
		return nil, fmt.Errorf("ошибка получения профиля: %v", err)
	}
	return &profile, nil
}
