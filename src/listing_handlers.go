package main

import (
	"net/http"

	"stays/src/common"
	"stays/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func listingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/listings", func(ctx *gin.Context) {
			var body types.CreateListingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			listing, err := common.CreateListing(currentActor(ctx), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"listing": listing})
		}).
		PATCH("/listings/:id/status", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateListingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			listing, err := common.SetListingStatus(currentActor(ctx), uuid.MustParse(params.ID), types.ListingStatus(body.Status))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"listing": listing})
		})
	return g
}
