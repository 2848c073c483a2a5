package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

type ProductHandler struct {
	productService *services.ProductService
	images         *services.ImageStore
	log            logrus.FieldLogger
}

func NewProductHandler(productService *services.ProductService, images *services.ImageStore, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		images:         images,
		log:            log,
	}
}

// GET /api/products
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	page, limit := pageParams(c)
	products, total := h.productService.GetAllProducts(page, limit)
	respondPage(c, products, page, limit, total)
}

// GET /api/products/all (admin)
func (h *ProductHandler) ListAllProducts(c *gin.Context) {
	page, limit := pageParams(c)
	products, total := h.productService.ListAllProducts(page, limit)
	respondPage(c, products, page, limit, total)
}

// GET /api/products/:id
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, exists := h.productService.GetProductByID(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "message": "Không tìm thấy sản phẩm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GET /api/products/search?q=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	page, limit := pageParams(c)
	products, total := h.productService.SearchProducts(c.Query("q"), page, limit)
	respondPage(c, products, page, limit, total)
}

// GET /api/products/filter
func (h *ProductHandler) FilterProducts(c *gin.Context) {
	f := models.ProductFilter{
		Query:      c.Query("q"),
		ActiveOnly: true,
		Sort:       models.ProductSort(c.Query("sort")),
	}
	f.CategoryID, _ = strconv.Atoi(c.Query("category_id"))
	f.BrandID, _ = strconv.Atoi(c.Query("brand_id"))
	if v := c.Query("min_price"); v != "" {
		f.MinPrice, _ = decimal.NewFromString(v)
	}
	if v := c.Query("max_price"); v != "" {
		f.MaxPrice, _ = decimal.NewFromString(v)
	}

	page, limit := pageParams(c)
	products, total := h.productService.Filter(f, page, limit)
	respondPage(c, products, page, limit, total)
}

// POST /api/products (admin). Accepts JSON or multipart with "images" files.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	in, err := productInput(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	if product, err = h.attachUploads(c, product); err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("product_id", product.ID).Info("product created")
	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// PUT /api/products/:id (admin)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, err := productInput(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	if product, err = h.attachUploads(c, product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// DELETE /api/products/:id (admin)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, exists := h.productService.GetProductByID(id)
	if !exists {
		respondError(c, fmt.Errorf("product %d: %w", id, services.ErrNotFound))
		return
	}
	if err := h.productService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	for _, img := range product.Images {
		h.removeFile(img.Path)
	}

	h.log.WithField("product_id", id).Info("product deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted", "id": id})
}

// DELETE /api/products/:id/images/:imageId (admin)
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramID(c, "imageId")
	if !ok {
		return
	}

	path, err := h.productService.RemoveImage(id, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.removeFile(path)

	product, _ := h.productService.GetProductByID(id)
	c.JSON(http.StatusOK, gin.H{"data": product})
}

// PUT /api/products/:id/images/:imageId/primary (admin)
func (h *ProductHandler) SetPrimaryImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramID(c, "imageId")
	if !ok {
		return
	}

	product, err := h.productService.SetPrimaryImage(id, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GET /api/products/export (admin)
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		respondError(c, err)
		return
	}

	headers := []string{
		"ID", "Name", "Description", "Price", "Discount", "SalePrice",
		"Stock", "Active", "CategoryID", "BrandID", "Image", "CreatedAt", "UpdatedAt",
	}
	headerRow := sheet.AddRow()
	for _, title := range headers {
		headerRow.AddCell().SetValue(title)
	}

	for _, p := range h.productService.All() {
		row := sheet.AddRow()
		row.AddCell().SetInt(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.String())
		row.AddCell().SetInt(p.Discount)
		row.AddCell().SetString(p.UnitPrice().String())
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Active)
		row.AddCell().SetInt(p.CategoryID)
		row.AddCell().SetInt(p.BrandID)
		img, _ := p.PrimaryImage()
		row.AddCell().SetString(img.Path)
		row.AddCell().SetString(p.CreatedAt.Format(time.DateTime))
		row.AddCell().SetString(p.UpdatedAt.Format(time.DateTime))
	}

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("write product export")
	}
}

// HealthCheck is mounted at /api/health.
func (h *ProductHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"products":  h.productService.Count(),
		"timestamp": time.Now().Unix(),
	})
}

func (h *ProductHandler) attachUploads(c *gin.Context, product *models.Product) (*models.Product, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File["images"]) == 0 {
		return product, nil
	}

	paths := make([]string, 0, len(form.File["images"]))
	for _, fh := range form.File["images"] {
		path, err := h.images.Save(fh)
		if err != nil {
			for _, p := range paths {
				h.removeFile(p)
			}
			return nil, err
		}
		paths = append(paths, path)
	}
	return h.productService.AttachImages(product.ID, paths)
}

func (h *ProductHandler) removeFile(path string) {
	if err := h.images.Remove(path); err != nil {
		h.log.WithError(err).WithField("path", path).Warn("remove product image")
	}
}

// productInput reads the product fields from a JSON body or from form values.
// Only fields present in the request are set.
func productInput(c *gin.Context) (models.ProductInput, error) {
	var in models.ProductInput
	if c.ContentType() == gin.MIMEJSON {
		err := c.ShouldBindJSON(&in)
		return in, err
	}

	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return in, fmt.Errorf("invalid price %q", v)
		}
		in.Price = &price
	}
	ints := []struct {
		field string
		dst   **int
	}{
		{"stock", &in.Stock},
		{"discount", &in.Discount},
		{"category_id", &in.CategoryID},
		{"brand_id", &in.BrandID},
	}
	for _, f := range ints {
		v, ok := c.GetPostForm(f.field)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return in, fmt.Errorf("invalid %s %q", f.field, v)
		}
		*f.dst = &n
	}
	if v, ok := c.GetPostForm("active"); ok {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return in, fmt.Errorf("invalid active %q", v)
		}
		in.Active = &active
	}
	return in, nil
}
