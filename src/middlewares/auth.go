package middlewares

import (
	"log"
	"os"
	"strings"

	"padelbook/src/db"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) < 2 || parts[1] == "" {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := parts[1]
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	db := db.GetDb()
	var user models.User
	db.Model(&models.User{}).Where(&models.User{ID: uid}).Find(&user)

	if user.ID != uid {
		ctx.AbortWithStatus(401)
		return
	}
	ctx.Set("id", user.ID.String())
	ctx.Set("telegram_id", user.TelegramID)
	ctx.Set("username", user.DisplayName)
	ctx.Set("role", string(user.Role))
}

// RequireAdmin allows only assistants and the club owner through.
func RequireAdmin(ctx *gin.Context) {
	role := types.UserRole(ctx.GetString("role"))
	if role != types.ROLE_OWNER && role != types.ROLE_ASSISTANT {
		ctx.AbortWithStatus(403)
		return
	}
}
