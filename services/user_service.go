package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"opnlend/models"
)

type UserService struct {
	db       *gorm.DB
	validate *validator.Validate
}

type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	UserType  string `json:"userType" validate:"required"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	UserType  string `json:"userType"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, validate: validator.New()}
}

// CreateUser создает нового сотрудника банка
func (h *UserService) CreateUser(req CreateUserRequest) (*models.User, error) {
	// Валидируем запрос
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := h.validate.Var(req.UserType,
		"oneof=LOAN_OFFICER BUSINESS_DEVELOPMENT_OFFICER COMMERCIAL_CREDIT_ANALYST COMMERCIAL_UNDERWRITER COMMERCIAL_LOAN_ADMINISTRATOR COMMERCIAL_PORTFOLIO_MANAGER LOAN_OPERATIONS_SPECIALIST CHIEF_CREDIT_OFFICER CHIEF_FINANCIAL_OFFICER CHIEF_EXECUTIVE_OFFICER CHIEF_LENDING_OFFICER"); err != nil {
		return nil, invalidEnum("user_type", "недопустимая роль сотрудника")
	}

	// Проверяем, существует ли сотрудник с таким email
	var existingUser models.User
	if err := h.db.Where("LOWER(email) = LOWER(?)", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("сотрудник с таким email уже существует")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Создаем нового сотрудника
	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		UserType:  models.UserType(req.UserType),
	}

	if err := h.db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// FindByID ищет сотрудника по ID
func (h *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("сотрудник не найден")
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail ищет сотрудника по email (игнорируя регистр и пробелы)
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("сотрудник не найден")
		}
		return nil, err
	}
	return &user, nil
}

// GetAllByUserType возвращает сотрудников указанной роли
func (h *UserService) GetAllByUserType(userType models.UserType) ([]models.User, error) {
	var users []models.User
	if err := h.db.Where("user_type = ?", userType).Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
