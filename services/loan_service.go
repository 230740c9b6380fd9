package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"opnlend/models"
	"opnlend/utils"
)

// conditionalField описывает поле, обязательность которого зависит
// от категории кредита
type conditionalField struct {
	Name  string
	IsSet func(l *models.Loan) bool
	Clear func(l *models.Loan)
}

// Условные поля программы SBA
var sbaFields = []conditionalField{
	{
		Name:  "loan_delivery_method",
		IsSet: func(l *models.Loan) bool { return l.LoanDeliveryMethod != nil && *l.LoanDeliveryMethod != "" },
		Clear: func(l *models.Loan) { l.LoanDeliveryMethod = nil },
	},
	{
		Name:  "jobs_created",
		IsSet: func(l *models.Loan) bool { return l.JobsCreated != nil },
		Clear: func(l *models.Loan) { l.JobsCreated = nil },
	},
	{
		Name:  "jobs_retained",
		IsSet: func(l *models.Loan) bool { return l.JobsRetained != nil },
		Clear: func(l *models.Loan) { l.JobsRetained = nil },
	},
}

// Условные поля невозобновляемых и строительных линий
var conversionFields = []conditionalField{
	{
		Name:  "conversion_type",
		IsSet: func(l *models.Loan) bool { return l.ConversionType != nil && *l.ConversionType != "" },
		Clear: func(l *models.Loan) { l.ConversionType = nil },
	},
}

// Таблицы правил: категория кредита → условные поля, обязательные для нее.
// Новые программы и типы добавляются расширением таблиц, а не ветвлением.
var (
	loanProgramRules = map[models.LoanProgram][]conditionalField{
		models.LoanProgramSBA: sbaFields,
	}
	loanTypeRules = map[models.LoanType][]conditionalField{
		models.LoanTypeNonRevolving: conversionFields,
		models.LoanTypeConstruction: conversionFields,
	}
)

// LoanService предоставляет методы для работы с кредитами
type LoanService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewLoanService создает новый экземпляр LoanService
func NewLoanService(db *gorm.DB) *LoanService {
	return &LoanService{
		db:        db,
		validator: validator.New(),
	}
}

// validateEnums проверяет значения перечислений кредита
func (s *LoanService) validateEnums(l *models.Loan) *ValidationError {
	verr := &ValidationError{}

	checks := []struct {
		field string
		value string
		rule  string
	}{
		{"loan_program", string(l.LoanProgram), "required,oneof=CONSUMER COMMERCIAL SBA USDA"},
		{"loan_type", string(l.LoanType), "required,oneof=TERM REVOLVING NONREVOLVING CONSTRUCTION MASTER"},
	}
	for _, c := range checks {
		if err := s.validator.Var(c.value, c.rule); err != nil {
			verr.Add(ValidationInvalidEnumValue, c.field, "недопустимое значение перечисления")
		}
	}

	if l.LoanDeliveryMethod != nil && *l.LoanDeliveryMethod != "" {
		if err := s.validator.Var(*l.LoanDeliveryMethod, "oneof=7A 504"); err != nil {
			verr.Add(ValidationInvalidEnumValue, "loan_delivery_method", "недопустимое значение перечисления")
		}
	}
	if l.ConversionType != nil && *l.ConversionType != "" {
		if err := s.validator.Var(string(*l.ConversionType), "oneof=PERMANENT DUE_UPON_MATURITY"); err != nil {
			verr.Add(ValidationInvalidEnumValue, "conversion_type", "недопустимое значение перечисления")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// applyConditionalRules применяет таблицы условных правил: собирает
// отсутствующие обязательные поля и обнуляет поля, неприменимые
// к категории кредита. Правила вычисляются при каждом сохранении,
// так как программа и тип кредита могут быть изменены позже.
func applyConditionalRules(l *models.Loan) *ValidationError {
	verr := &ValidationError{}

	required := make(map[string]bool)
	for _, f := range loanProgramRules[l.LoanProgram] {
		required[f.Name] = true
		if !f.IsSet(l) {
			verr.Add(ValidationMissingRequiredField, f.Name,
				"поле обязательно для программы "+string(l.LoanProgram))
		}
	}
	for _, f := range loanTypeRules[l.LoanType] {
		required[f.Name] = true
		if !f.IsSet(l) {
			verr.Add(ValidationMissingRequiredField, f.Name,
				"поле обязательно для типа "+string(l.LoanType))
		}
	}

	if verr.HasErrors() {
		return verr
	}

	// Обнуляем условные поля, не требуемые для данной категории
	clearUnlessRequired := func(fields []conditionalField) {
		for _, f := range fields {
			if !required[f.Name] {
				f.Clear(l)
			}
		}
	}
	for _, fields := range loanProgramRules {
		clearUnlessRequired(fields)
	}
	for _, fields := range loanTypeRules {
		clearUnlessRequired(fields)
	}

	return nil
}

// ValidateAndSave валидирует кредит и сохраняет его. Нарушение условных
// правил возвращается как структурированная ошибка до записи в базу.
func (s *LoanService) ValidateAndSave(l *models.Loan) error {
	if l.LoanNumber == "" {
		utils.GetMetrics().RecordValidationFailure()
		return missingRequired("loan_number", "номер кредита обязателен")
	}

	if verr := s.validateEnums(l); verr != nil {
		utils.GetMetrics().RecordValidationFailure()
		return verr
	}

	if verr := applyConditionalRules(l); verr != nil {
		utils.GetMetrics().RecordValidationFailure()
		return verr
	}

	if err := s.db.Save(l).Error; err != nil {
		return errors.New("ошибка при сохранении кредита")
	}
	return nil
}

// GetByNumber возвращает кредит по номеру
func (s *LoanService) GetByNumber(loanNumber string) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.First(&loan, "loan_number = ?", loanNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("кредит не найден")
		}
		return nil, errors.New("ошибка при поиске кредита")
	}
	return &loan, nil
}

// GetAllByBorrower возвращает все кредиты заемщика
func (s *LoanService) GetAllByBorrower(borrowerID uint) ([]models.Loan, error) {
	var loans []models.Loan
	if err := s.db.Where("borrower_id = ?", borrowerID).Find(&loans).Error; err != nil {
		return nil, errors.New("ошибка при поиске кредитов заемщика")
	}
	return loans, nil
}

// Delete удаляет кредит по номеру
func (s *LoanService) Delete(loanNumber string) error {
	result := s.db.Delete(&models.Loan{}, "loan_number = ?", loanNumber)
	if result.Error != nil {
		return errors.New("ошибка при удалении кредита")
	}
	if result.RowsAffected == 0 {
		return errors.New("кредит не найден")
	}
	return nil
}
