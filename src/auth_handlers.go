package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"padelbook/src/db"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func generateJWT(user *models.User) (string, error) {
	claims := &types.Claims{
		Username:   user.DisplayName,
		Role:       string(user.Role),
		TelegramID: user.TelegramID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/auth/telegram", func(ctx *gin.Context) {
			var body types.TelegramAuthRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			err := db.Transaction(func(tx *gorm.DB) error {
				err := tx.
					Where(&models.User{TelegramID: body.TelegramID}).
					First(&user).
					Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					user = models.User{
						TelegramID:  body.TelegramID,
						DisplayName: body.DisplayName,
						Username:    body.Username,
						AvatarURL:   body.AvatarURL,
						Role:        types.ROLE_PLAYER,
					}
					return tx.Create(&user).Error
				}
				if err != nil {
					return err
				}
				return tx.
					Model(&models.User{}).
					Where("id = ?", user.ID).
					Updates(map[string]any{
						"display_name": body.DisplayName,
						"username":     body.Username,
						"avatar_url":   body.AvatarURL,
					}).
					Error
			})
			if err != nil {
				log.Printf("Error upserting user: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			token, err := generateJWT(&user)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
		})
	return g
}
