package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"opnlend/config"
	"opnlend/controllers"
	"opnlend/database"
	"opnlend/middleware"
	"opnlend/services"
)

func initReviewScheduler(db *database.Database, emailService *services.EmailService) {
	// Создаем планировщик контроля отчетности
	scheduler := services.NewReviewSchedulerService(db.DB, emailService)

	// Запускаем планировщик
	scheduler.Start()
	log.Println("Планировщик контроля отчетности запущен")
}

// healthHandler сообщает о готовности сервиса
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных и выполняем миграции
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Инициализируем сервис email
	emailService := services.NewEmailService(cfg)

	// Запускаем планировщик контроля отчетности
	initReviewScheduler(db, emailService)

	// Создаем роутер
	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.CORSMiddleware)

	// Инициализируем контроллеры
	relationshipController := controllers.NewRelationshipController(db, cfg)
	loanController := controllers.NewLoanController(db)
	spreadingController := controllers.NewSpreadingController(db, cfg, emailService)
	userController := controllers.NewUserController(db)

	router.HandleFunc("/health", healthHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Маршруты реестра аффилированных лиц
	api.HandleFunc("/affiliates", relationshipController.CreateAffiliate).Methods("POST")
	api.HandleFunc("/affiliates", relationshipController.GetAffiliates).Methods("GET")
	api.HandleFunc("/affiliates/{code}", relationshipController.GetAffiliate).Methods("GET")
	api.HandleFunc("/affiliates/{id:[0-9]+}", relationshipController.DeleteAffiliate).Methods("DELETE")
	api.HandleFunc("/affiliates/{id:[0-9]+}/ownership", relationshipController.GetOwnership).Methods("GET")
	api.HandleFunc("/individuals", relationshipController.CreateIndividual).Methods("POST")
	api.HandleFunc("/individuals/{uuid}", relationshipController.GetIndividual).Methods("GET")
	api.HandleFunc("/individuals/{uuid}/profile", relationshipController.GetEffectiveProfile).Methods("GET")
	api.HandleFunc("/businesses", relationshipController.CreateBusiness).Methods("POST")
	api.HandleFunc("/businesses/{uuid}", relationshipController.GetBusiness).Methods("GET")
	api.HandleFunc("/ownership", relationshipController.CreateOwnership).Methods("POST")

	// Маршруты кредитов
	api.HandleFunc("/loans", loanController.SaveLoan).Methods("POST", "PUT")
	api.HandleFunc("/loans/{loanNumber}", loanController.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanNumber}", loanController.DeleteLoan).Methods("DELETE")
	api.HandleFunc("/borrowers/{id:[0-9]+}/loans", loanController.GetLoansByBorrower).Methods("GET")

	// Маршруты финансовой отчетности
	api.HandleFunc("/globalStatements", spreadingController.CreateGlobalStatement).Methods("POST")
	api.HandleFunc("/globalStatements/{id:[0-9]+}", spreadingController.GetGlobalStatement).Methods("GET")
	api.HandleFunc("/globalStatements/{id:[0-9]+}", spreadingController.DeleteGlobalStatement).Methods("DELETE")
	api.HandleFunc("/globalStatements/{id:[0-9]+}/incomeStatements", spreadingController.GetIncomeStatements).Methods("GET")
	api.HandleFunc("/globalStatements/{id:[0-9]+}/balanceSheets", spreadingController.GetBalanceSheets).Methods("GET")
	api.HandleFunc("/globalStatements/{id:[0-9]+}/export", spreadingController.ExportGlobalStatement).Methods("GET")
	api.HandleFunc("/incomeStatements", spreadingController.SaveIncomeStatement).Methods("POST", "PUT")
	api.HandleFunc("/incomeStatements/{id:[0-9]+}", spreadingController.GetIncomeStatement).Methods("GET")
	api.HandleFunc("/incomeStatements/{id:[0-9]+}", spreadingController.DeleteIncomeStatement).Methods("DELETE")
	api.HandleFunc("/balanceSheets", spreadingController.SaveBalanceSheet).Methods("POST", "PUT")
	api.HandleFunc("/balanceSheets/{uuid}", spreadingController.GetBalanceSheet).Methods("GET")
	api.HandleFunc("/balanceSheets/{uuid}", spreadingController.DeleteBalanceSheet).Methods("DELETE")

	// Маршруты сотрудников
	api.HandleFunc("/users", userController.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}", userController.GetUser).Methods("GET")
	api.HandleFunc("/users/byType/{userType}", userController.GetUsersByType).Methods("GET")

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
