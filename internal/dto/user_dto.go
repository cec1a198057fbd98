package dto

import (
	"github.com/jinzhu/copier"

	"github.com/noah-isme/code-quest-api/internal/models"
)

// LoginRequest registers or refreshes a user coming from an identity provider.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Provider   string `json:"provider" validate:"required"`
	ProviderID string `json:"provider_id" validate:"required"`
}

// UserResponse represents a user returned by the API.
type UserResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
}

// NewUserResponse builds a response DTO from the model.
func NewUserResponse(user models.User) UserResponse {
	var response UserResponse
	// Field names and types match one to one, so the copy cannot fail.
	_ = copier.Copy(&response, &user)
	return response
}
