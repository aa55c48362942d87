package main

import (
	"errors"
	"log"
	"net/http"

	"padelbook/src/common"
	"padelbook/src/types"
	"padelbook/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func participantHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/participants", func(ctx *gin.Context) {
			var body types.RegisterParticipantRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			eventId := uuid.MustParse(body.EventID)
			userId := uuid.MustParse(ctx.GetString("id"))
			result, err := common.RegisterParticipant(eventId, userId)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrEventNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrEventNotOpen):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrAlreadyRegistered):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					log.Printf("Error registering participant: %s\n", err.Error())
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": result})
		}).
		DELETE("/participants/:id/:user", func(ctx *gin.Context) {
			var params types.CancelParticipantRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			eventId := uuid.MustParse(params.EventID)
			userId := uuid.MustParse(params.UserID)
			role := types.UserRole(ctx.GetString("role"))
			isAdmin := role == types.ROLE_OWNER || role == types.ROLE_ASSISTANT
			if !isAdmin && ctx.GetString("id") != userId.String() {
				ctx.Status(http.StatusForbidden)
				return
			}
			canceled, err := common.CancelRegistration(eventId, userId)
			if err != nil {
				log.Printf("Error canceling registration: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"canceled": canceled})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId := uuid.MustParse(ctx.GetString("id"))
			registrations, err := utils.GetOwnRegistrations(userId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": registrations, "count": len(registrations)})
		})
	return g
}
