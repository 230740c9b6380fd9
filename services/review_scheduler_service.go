package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"opnlend/models"
)

// ReviewSchedulerService предоставляет методы для автоматического контроля
// качества финансовых отчетов: сводка по расбалансированным балансам и
// напоминания об устаревшей отчетности
type ReviewSchedulerService struct {
	db           *gorm.DB
	emailService *EmailService
}

// NewReviewSchedulerService создает новый экземпляр ReviewSchedulerService
func NewReviewSchedulerService(db *gorm.DB, emailService *EmailService) *ReviewSchedulerService {
	return &ReviewSchedulerService{
		db:           db,
		emailService: emailService,
	}
}

// Start запускает планировщик контроля отчетности
func (s *ReviewSchedulerService) Start() {
	// Отправляем сводку по расбалансированным балансам каждые 8 часов
	digestTicker := time.NewTicker(8 * time.Hour)
	go func() {
		for {
			select {
			case <-digestTicker.C:
				if err := s.SendUnbalancedDigest(); err != nil {
					log.Printf("Ошибка при отправке сводки по балансам: %v", err)
				}
			}
		}
	}()

	// Проверяем устаревшую отчетность раз в сутки
	staleTicker := time.NewTicker(24 * time.Hour)
	go func() {
		for {
			select {
			case <-staleTicker.C:
				if err := s.SendStaleStatementReminders(); err != nil {
					log.Printf("Ошибка при проверке устаревшей отчетности: %v", err)
				}
			}
		}
	}()
}

// SendUnbalancedDigest собирает все балансы с ненулевым расхождением
// и отправляет сводку на адрес кредитного контроля
func (s *ReviewSchedulerService) SendUnbalancedDigest() error {
	var sheets []models.BalanceSheet
	if err := s.db.Where("unbalanced_amount <> ?", decimal.Zero).Find(&sheets).Error; err != nil {
		return errors.New("ошибка при получении расбалансированных балансов")
	}

	total := decimal.Zero
	for _, bs := range sheets {
		total = total.Add(bs.UnbalancedAmount.Abs())
	}

	return s.emailService.SendStatementReviewDigest(len(sheets), total)
}

// SendStaleStatementReminders находит линейки, у которых последний отчет
// старше 18 месяцев, и отправляет напоминание о запросе свежей отчетности
func (s *ReviewSchedulerService) SendStaleStatementReminders() error {
	cutoff := time.Now().AddDate(0, -18, 0)

	var statements []models.GlobalStatement
	if err := s.db.Find(&statements).Error; err != nil {
		return errors.New("ошибка при получении линеек отчетов")
	}

	for _, gs := range statements {
		var latest models.BalanceSheet
		err := s.db.Where("global_statement_id = ? AND period_ending_date IS NOT NULL", gs.ID).
			Order("period_ending_date DESC").First(&latest).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return errors.New("ошибка при поиске последнего баланса линейки")
		}

		if latest.PeriodEndingDate.Before(cutoff) {
			var business models.Business
			if err := s.db.Where("uuid = ?", gs.BusinessUUID).First(&business).Error; err != nil {
				return errors.New("ошибка при получении предприятия линейки")
			}

			subject := "Требуется обновление финансовой отчетности"
			body := fmt.Sprintf(`
				<h2>Отчетность устарела</h2>
				<p>Заемщик: %s</p>
				<p>Дата последнего отчета: %s</p>
				<p>Запросите у заемщика отчетность за более свежий период.</p>
			`, business.EntityName, latest.PeriodEndingDate.Format("02.01.2006"))

			if err := s.emailService.SendEmail(s.emailService.config.SMTP.ReviewRecipient, subject, body); err != nil {
				log.Printf("Ошибка при отправке напоминания по линейке %d: %v", gs.ID, err)
			}
		}
	}

	return nil
}
