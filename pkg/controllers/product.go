package controllers

import (
	"net/http"
	"strconv"
	"time"

	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/services"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type ProductController struct {
	productService services.ProductService
	timeout        time.Duration
}

func InitProductController(productService services.ProductService, timeout time.Duration) *ProductController {
	return &ProductController{
		productService: productService,
		timeout:        timeout,
	}
}

// GetProducts handles GET /api/products
func (pc *ProductController) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, pc.timeout)
		defer cancel()

		query, err := catalog.ParseQuery(c.Request.URL.Query())
		if err != nil {
			respondError(c, err)
			return
		}

		page, err := pc.productService.ListProducts(ctx, query)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccessMeta(c, http.StatusOK, page.Items, page.Count, &util.PageMeta{
			Total: page.Total,
			Page:  page.Page,
			Pages: page.Pages,
		})
	}
}

// GetFeaturedProducts handles GET /api/products/featured
func (pc *ProductController) GetFeaturedProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, pc.timeout)
		defer cancel()

		products, err := pc.productService.FeaturedProducts(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccessMeta(c, http.StatusOK, products, len(products), nil)
	}
}

// GetProduct handles GET /api/products/:id. The id may also be a slug.
func (pc *ProductController) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, pc.timeout)
		defer cancel()

		product, err := pc.productService.GetProduct(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "", product)
	}
}

// CreateProduct handles POST /api/products
func (pc *ProductController) CreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, pc.timeout)
		defer cancel()

		var req models.ProductRequest
		if !bindJSON(c, &req) {
			return
		}

		product, err := pc.productService.CreateProduct(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "", product)
	}
}

// UpdateProduct handles PUT /api/products/:id
func (pc *ProductController) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, pc.timeout)
		defer cancel()

		var req models.ProductUpdate
		if !bindJSON(c, &req) {
			return
		}

		product, err := pc.productService.UpdateProduct(ctx, c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "", product)
	}
}

// DeleteProduct handles DELETE /api/products/:id
func (pc *ProductController) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, pc.timeout)
		defer cancel()

		if err := pc.productService.DeleteProduct(ctx, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Product deleted successfully", nil)
	}
}

// UploadProductImage handles POST /api/products/:id/images (multipart "image").
func (pc *ProductController) UploadProductImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, uploadTimeout)
		defer cancel()

		imageFile, _, err := c.Request.FormFile("image")
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, errors.Wrap(err, "image file is required"))
			return
		}
		defer imageFile.Close()

		isPrimary, _ := strconv.ParseBool(c.PostForm("isPrimary"))

		product, err := pc.productService.AddImage(ctx, c.Param("id"), imageFile, c.PostForm("alt"), isPrimary)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Image uploaded successfully", product)
	}
}
