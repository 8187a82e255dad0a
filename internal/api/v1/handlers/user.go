package handlers

import (
	"tasktracker/internal/api/response"
	"tasktracker/internal/models"
	"tasktracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetAllUsers lists users, optionally filtered by ?search= over name and email.
func (h *UserHandler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), models.UserFilter{Search: c.Query("search")})
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, "Users fetched successfully", users)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "User found", user)
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := parseBody(c, &req, "create user"); err != nil {
		return response.Error(c, err)
	}
	user, err := h.users.Create(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req service.UpdateUserInput
	if err := parseBody(c, &req, "update user"); err != nil {
		return response.Error(c, err)
	}
	user, err := h.users.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "User deleted successfully", nil)
}
