package handlers

import (
	"tasktracker/internal/api/response"
	"tasktracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req, "register"); err != nil {
		return response.Error(c, err)
	}
	res, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusCreated, "User registered successfully", res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req, "login"); err != nil {
		return response.Error(c, err)
	}
	res, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Login successful", res)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), actor(c).ID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "User found", user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req, "update profile"); err != nil {
		return response.Error(c, err)
	}
	user, err := h.auth.UpdateProfile(c.UserContext(), actor(c).ID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Profile updated successfully", user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := parseBody(c, &req, "change password"); err != nil {
		return response.Error(c, err)
	}
	if err := h.auth.ChangePassword(c.UserContext(), actor(c).ID, req); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Password changed successfully", nil)
}
