package main

import (
	"errors"
	"net/http"
	"time"

	"padelbook/src/common"
	"padelbook/src/db"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/admin/payments/pending", func(ctx *gin.Context) {
			db := db.GetDb()
			var payments []models.Payment
			err := db.
				Model(&models.Payment{}).
				Where("status = ?", types.PAYMENT_PENDING).
				Preload("User").
				Preload("Event").
				Order("payment_deadline asc").
				Limit(200).
				Find(&payments).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments, "count": len(payments)})
		}).
		POST("/admin/payments/:id/paid", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			paymentId := uuid.MustParse(params.ID)
			changed, err := common.ApplyPaidStatus(paymentId, nil)
			if err != nil {
				if errors.Is(err, common.ErrPaymentNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"changed": changed})
		}).
		GET("/admin/stats", func(ctx *gin.Context) {
			period := ctx.DefaultQuery("period", "month")
			since := time.Now()
			switch period {
			case "week":
				since = since.AddDate(0, 0, -7)
			case "month":
				since = since.AddDate(0, -1, 0)
			case "year":
				since = since.AddDate(-1, 0, 0)
			default:
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "period must be week, month or year"})
				return
			}
			db := db.GetDb()
			var eventCount, participantCount int64
			var revenue float64
			if err := db.
				Model(&models.Event{}).
				Where("date >= ?", since).
				Count(&eventCount).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if err := db.
				Model(&models.EventParticipant{}).
				Where("registered_at >= ? AND status <> ?", since, types.PARTICIPANT_CANCELED).
				Count(&participantCount).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			row := db.
				Model(&models.Payment{}).
				Where("status = ? AND paid_at >= ?", types.PAYMENT_PAID, since).
				Select("COALESCE(SUM(amount), 0)").
				Row()
			if err := row.Scan(&revenue); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"period":       period,
				"events":       eventCount,
				"participants": participantCount,
				"revenue":      revenue,
			}})
		}).
		GET("/admin/users", func(ctx *gin.Context) {
			db := db.GetDb()
			var users []models.User
			err := db.
				Model(&models.User{}).
				Order("created_at desc").
				Limit(500).
				Find(&users).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users, "count": len(users)})
		})
	return g
}
