package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"opnlend/database"
	"opnlend/models"
	"opnlend/services"
)

// UserController обрабатывает запросы, связанные с сотрудниками банка
type UserController struct {
	userService *services.UserService
}

// NewUserController создает новый экземпляр UserController
func NewUserController(db *database.Database) *UserController {
	return &UserController{
		userService: services.NewUserService(db.DB),
	}
}

// CreateUser обрабатывает запрос на создание сотрудника
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := c.userService.CreateUser(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	writeJSON(w, http.StatusCreated, services.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		UserType:  string(user.UserType),
	})
}

// GetUser обрабатывает запрос на получение сотрудника по ID
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := c.userService.FindByID(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, services.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		UserType:  string(user.UserType),
	})
}

// GetUsersByType обрабатывает запрос на получение сотрудников по роли
func (c *UserController) GetUsersByType(w http.ResponseWriter, r *http.Request) {
	userType := mux.Vars(r)["userType"]

	users, err := c.userService.GetAllByUserType(models.UserType(userType))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]services.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, services.UserResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			UserType:  string(user.UserType),
		})
	}

	writeJSON(w, http.StatusOK, responses)
}
