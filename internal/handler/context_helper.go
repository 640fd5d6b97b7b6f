package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/middleware"
	"github.com/noah-isme/seatplan-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.ClaimsFromContext(c)
}

// actorFromContext names the operator behind the request for lock ownership and audit logs.
// Anonymous requests yield "".
func actorFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.Username
	}
	return ""
}
