package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"opnlend/models"
)

// GlobalStatementService предоставляет методы для работы с линейками
// периодических финансовых отчетов
type GlobalStatementService struct {
	db *gorm.DB
}

// NewGlobalStatementService создает новый экземпляр GlobalStatementService
func NewGlobalStatementService(db *gorm.DB) *GlobalStatementService {
	return &GlobalStatementService{db: db}
}

// Create создает новую линейку отчетов для связки
// аффилированное лицо + предприятие + физическое лицо
func (s *GlobalStatementService) Create(gs *models.GlobalStatement) error {
	if gs.AffiliateID == 0 {
		return missingRequired("affiliate_id", "аффилированное лицо обязательно")
	}
	if gs.BusinessUUID == uuid.Nil {
		return missingRequired("business_uuid", "предприятие обязательно")
	}
	if gs.IndividualUUID == uuid.Nil {
		return missingRequired("individual_uuid", "физическое лицо обязательно")
	}

	// Проверяем, что все три стороны существуют
	var affiliate models.Affiliate
	if err := s.db.First(&affiliate, gs.AffiliateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("аффилированное лицо не найдено")
		}
		return fmt.Errorf("ошибка проверки аффилированного лица: %v", err)
	}
	var business models.Business
	if err := s.db.Where("uuid = ?", gs.BusinessUUID).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("предприятие не найдено")
		}
		return fmt.Errorf("ошибка проверки предприятия: %v", err)
	}
	var individual models.Individual
	if err := s.db.Where("uuid = ?", gs.IndividualUUID).First(&individual).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("физическое лицо не найдено")
		}
		return fmt.Errorf("ошибка проверки физического лица: %v", err)
	}

	if err := s.db.Create(gs).Error; err != nil {
		return fmt.Errorf("ошибка создания линейки отчетов: %v", err)
	}

	return nil
}

// GetByID возвращает линейку отчетов вместе с отчетами всех периодов,
// упорядоченными по дате окончания периода
func (s *GlobalStatementService) GetByID(id uint) (*models.GlobalStatement, error) {
	var gs models.GlobalStatement
	if err := s.db.
		Preload("IncomeStatements", func(db *gorm.DB) *gorm.DB {
			return db.Order("period_ending_date")
		}).
		Preload("BalanceSheets", func(db *gorm.DB) *gorm.DB {
			return db.Order("period_ending_date")
		}).
		Preload("BalanceSheets.UserDefinedFields").
		First(&gs, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("линейка отчетов не найдена")
		}
		return nil, fmt.Errorf("ошибка получения линейки отчетов: %v", err)
	}
	return &gs, nil
}

// GetAllByAffiliate возвращает все линейки отчетов аффилированного лица
func (s *GlobalStatementService) GetAllByAffiliate(affiliateID uint) ([]models.GlobalStatement, error) {
	var statements []models.GlobalStatement
	if err := s.db.Where("affiliate_id = ?", affiliateID).Find(&statements).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения линеек отчетов: %v", err)
	}
	return statements, nil
}

// GetAllByBusiness возвращает все линейки отчетов предприятия
func (s *GlobalStatementService) GetAllByBusiness(businessUUID uuid.UUID) ([]models.GlobalStatement, error) {
	var statements []models.GlobalStatement
	if err := s.db.Where("business_uuid = ?", businessUUID).Find(&statements).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения линеек отчетов: %v", err)
	}
	return statements, nil
}

// Delete удаляет линейку отчетов вместе со всеми отчетами периодов
func (s *GlobalStatementService) Delete(id uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("ошибка начала транзакции: %v", tx.Error)
	}

	// Отчеты периодов удаляем явно: каскад на уровне базы может быть
	// недоступен в части окружений
	if err := tx.Where("balance_sheet_uuid IN (?)",
		tx.Model(&models.BalanceSheet{}).Select("uuid").Where("global_statement_id = ?", id),
	).Delete(&models.UserDefinedField{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления пользовательских статей линейки: %v", err)
	}
	if err := tx.Where("global_statement_id = ?", id).Delete(&models.BalanceSheet{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления балансов линейки: %v", err)
	}
	if err := tx.Where("global_statement_id = ?", id).Delete(&models.IncomeStatement{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления отчетов о прибылях и убытках: %v", err)
	}

	result := tx.Delete(&models.GlobalStatement{}, id)
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления линейки отчетов: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return errors.New("линейка отчетов не найдена")
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %v", err)
	}

	return nil
}
