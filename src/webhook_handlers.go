package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"padelbook/src/common"
	"padelbook/src/lib"
	"padelbook/src/types"

	"github.com/gin-gonic/gin"
)

// Webhook deliveries are acknowledged with 200 even when nothing changed
// locally; anything else makes the gateway retry forever.
func webhookHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/webhook/yookassa", func(ctx *gin.Context) {
			var body types.GatewayNotification
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dedupKey := fmt.Sprintf("webhook:%s:%s", body.Event, body.Object.ID)
			if !lib.ClaimOnce(ctx, dedupKey, time.Hour) {
				log.Printf("Skipping replayed webhook %s for %s\n", body.Event, body.Object.ID)
				ctx.Status(http.StatusOK)
				return
			}

			switch body.Event {
			case "payment.succeeded":
				participantId := body.Object.Metadata["participant_id"]
				payment, err := common.FindPaymentForNotification(body.Object.ID, participantId)
				if err != nil {
					log.Printf("Webhook for unknown payment %s: %s\n", body.Object.ID, err.Error())
					lib.ReleaseClaim(ctx, dedupKey)
					ctx.Status(http.StatusOK)
					return
				}
				if _, err := common.ApplyPaidStatus(payment.ID, &body.Object.ID); err != nil {
					// Give the claim back so the gateway's retry is processed
					// instead of being swallowed as a replay.
					log.Printf("Error applying webhook %s: %s\n", body.Object.ID, err.Error())
					lib.ReleaseClaim(ctx, dedupKey)
					ctx.Status(http.StatusInternalServerError)
					return
				}
			case "payment.canceled":
				if err := common.ApplyCanceledStatus(body.Object.ID); err != nil {
					log.Printf("Error applying webhook cancel %s: %s\n", body.Object.ID, err.Error())
					lib.ReleaseClaim(ctx, dedupKey)
					ctx.Status(http.StatusInternalServerError)
					return
				}
			default:
				log.Printf("Ignoring webhook event %s\n", body.Event)
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
