package auth

import (
	"github.com/adiyogi/wellness-api/utils/middleware"
	"github.com/adiyogi/wellness-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok || claims == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	expiresAt := claims.ExpiresAt.Time
	if err := h.blacklistService.RevokeToken(c.Context(), claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to revoke token")
	}

	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}
