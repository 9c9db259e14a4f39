package main

import (
	"errors"
	"net/http"

	"stays/src/common"
	"stays/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func currentActor(ctx *gin.Context) types.Actor {
	id, _ := uuid.Parse(ctx.GetString("id"))
	return types.Actor{ID: id, Role: ctx.GetString("role")}
}

func respondError(ctx *gin.Context, err error) {
	var opErr *common.OpError
	if errors.As(err, &opErr) {
		ctx.JSON(opErr.Status(), gin.H{"error": opErr.Message})
		return
	}
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.CreateBooking(currentActor(ctx), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"booking": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			bookings, err := common.GetGuestBookings(currentActor(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := common.GetBooking(currentActor(ctx), uuid.MustParse(params.ID))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		}).
		GET("/bookings/listing/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			bookings, err := common.GetListingBookings(currentActor(ctx), uuid.MustParse(params.ID))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
		}).
		PATCH("/bookings/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.UpdateBooking(currentActor(ctx), uuid.MustParse(params.ID), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		}).
		POST("/bookings/:id/pay", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.PayBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.PayBooking(currentActor(ctx), uuid.MustParse(params.ID), body.Outcome)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		}).
		PATCH("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, refund, err := common.CancelBooking(currentActor(ctx), uuid.MustParse(params.ID))
			if err != nil {
				respondError(ctx, err)
				return
			}
			res := gin.H{"booking": booking}
			if refund != nil {
				res["refund"] = refund
			}
			ctx.JSON(http.StatusOK, res)
		}).
		PATCH("/bookings/:id/cancel/approve", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, refund, err := common.ApproveCancellation(currentActor(ctx), uuid.MustParse(params.ID))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking, "refund": refund})
		}).
		PATCH("/bookings/:id/cancel/reject", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := common.RejectCancellation(currentActor(ctx), uuid.MustParse(params.ID))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		}).
		PATCH("/bookings/:id/status", func(ctx *gin.Context) {
			if !common.IsAdmin(currentActor(ctx)) {
				ctx.Status(http.StatusForbidden)
				return
			}
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.SetBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.SetBookingStatus(uuid.MustParse(params.ID), types.BookingStatus(body.Status))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		})
	return g
}
