package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

// ShippingController proxies the RajaOngkir region catalog and cost quotes
// to the storefront.
type ShippingController struct {
	shipping services.ShippingService
}

func NewShippingController(shipping services.ShippingService) *ShippingController {
	return &ShippingController{shipping: shipping}
}

func (sc *ShippingController) GetProvinces(ctx *gin.Context) {
	provinces, err := sc.shipping.Provinces(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"message": "Failed to fetch provinces"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"provinces": provinces})
}

func (sc *ShippingController) GetCities(ctx *gin.Context) {
	cities, err := sc.shipping.Cities(ctx.Request.Context(), ctx.Query("province"))
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"message": "Failed to fetch cities"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cities": cities})
}

type costRequest struct {
	Destination string `json:"destination" binding:"required"`
	Weight      int    `json:"weight" binding:"required,min=1"`
	Courier     string `json:"courier" binding:"required"`
}

func (sc *ShippingController) GetCost(ctx *gin.Context) {
	var req costRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "destination, weight and courier are required", "errors": err.Error()})
		return
	}

	rates, err := sc.shipping.Cost(ctx.Request.Context(), req.Destination, req.Weight, req.Courier)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"message": "Failed to fetch shipping cost"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"rates": rates})
}
