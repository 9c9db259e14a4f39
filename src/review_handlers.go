package main

import (
	"errors"
	"net/http"

	"stays/src/common"
	"stays/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func reviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/reviews", func(ctx *gin.Context) {
			var body types.CreateReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			review, err := common.CreateReview(currentActor(ctx), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"review": review})
		}).
		GET("/reviews/me", func(ctx *gin.Context) {
			reviews, err := common.UserReviews(currentActor(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
		}).
		GET("/reviews/eligibility/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			err := common.CheckReviewEligibility(currentActor(ctx), uuid.MustParse(params.ID))
			if err != nil {
				var opErr *common.OpError
				if errors.As(err, &opErr) {
					ctx.JSON(http.StatusOK, gin.H{"eligible": false, "reason": opErr.Message})
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"eligible": true})
		}).
		PATCH("/reviews/:id/flag", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.FlagReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			review, err := common.FlagReview(currentActor(ctx), uuid.MustParse(params.ID), body.Reason)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"review": review})
		}).
		GET("/reviews/flagged", func(ctx *gin.Context) {
			if !common.IsAdmin(currentActor(ctx)) {
				ctx.Status(http.StatusForbidden)
				return
			}
			reviews, err := common.FlaggedReviews()
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
		}).
		DELETE("/reviews/:id", func(ctx *gin.Context) {
			if !common.IsAdmin(currentActor(ctx)) {
				ctx.Status(http.StatusForbidden)
				return
			}
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			review, err := common.RemoveReview(uuid.MustParse(params.ID))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"review": review})
		})
	return g
}
