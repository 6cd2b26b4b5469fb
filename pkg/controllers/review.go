package controllers

import (
	"net/http"
	"time"

	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/services"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	productService services.ProductService
	timeout        time.Duration
}

func InitReviewController(productService services.ProductService, timeout time.Duration) *ReviewController {
	return &ReviewController{
		productService: productService,
		timeout:        timeout,
	}
}

// CreateProductReview handles POST /api/products/:id/reviews
func (rc *ReviewController) CreateProductReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, rc.timeout)
		defer cancel()

		var req models.ReviewRequest
		if !bindJSON(c, &req) {
			return
		}

		product, err := rc.productService.AddReview(ctx, c.Param("id"), userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Review added successfully", product)
	}
}
