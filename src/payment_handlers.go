package main

import (
	"errors"
	"log"
	"net/http"

	"padelbook/src/common"
	"padelbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments", func(ctx *gin.Context) {
			var body types.CreatePaymentRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			participantId := uuid.MustParse(body.ParticipantID)
			payment, err := common.CheckoutForParticipant(ctx, participantId, uuid.MustParse(ctx.GetString("id")), body.ReturnURL)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrPaymentNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrExternalService):
					ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				default:
					log.Printf("Error creating checkout: %s\n", err.Error())
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": payment})
		}).
		POST("/payments/:id/check", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			paymentId := uuid.MustParse(params.ID)
			payment, err := common.CheckPayment(ctx, paymentId)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrPaymentNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrExternalService):
					ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		})
	return g
}
