package http

import (
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
	"github.com/gb112302/agriconnect/internal/service"
)

const maxImageUploadBytes = 10 << 20

type ProductHandler struct {
	catalog service.CatalogService
	log     logger.Logger
}

func NewProductHandler(catalog service.CatalogService, log logger.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log.Named("product_handler")}
}

type productPayload struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Price       *float64                `json:"price"`
	Category    *entity.Category        `json:"category"`
	Subcategory *string                 `json:"subcategory"`
	Stock       *int                    `json:"stockQuantity"`
	Unit        *entity.Unit            `json:"unit"`
	IsAvailable *bool                   `json:"isAvailable"`
	Location    *entity.ProductLocation `json:"location"`
	Tags        []string                `json:"tags"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	farmerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req productPayload
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	params := service.CreateProductParams{}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Price != nil {
		params.Price = *req.Price
	}
	if req.Category != nil {
		params.Category = *req.Category
	}
	if req.Subcategory != nil {
		params.Subcategory = *req.Subcategory
	}
	if req.Stock != nil {
		params.Stock = *req.Stock
	}
	if req.Unit != nil {
		params.Unit = *req.Unit
	}
	if req.Location != nil {
		params.Location = *req.Location
	}
	params.Tags = req.Tags

	product, err := h.catalog.CreateProduct(r.Context(), farmerID, params)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"product": product})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"product": product})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, role, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req productPayload
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), actorID, id, role == entity.RoleAdmin, service.UpdateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Stock:       req.Stock,
		Unit:        req.Unit,
		IsAvailable: req.IsAvailable,
		Tags:        req.Tags,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"product": product})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, role, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), actorID, id, role == entity.RoleAdmin); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "product deleted"})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var farmerID primitive.ObjectID
	if raw := q.Get("farmerId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(w, h.log, service.ErrValidation)
			return
		}
		farmerID = id
	}

	// The public catalog never shows listings a farmer or admin has
	// switched off; owners see everything through /mine.
	result, err := h.catalog.ListProducts(r.Context(), repository.ListProductsParams{
		Category:      entity.Category(q.Get("category")),
		FarmerID:      farmerID,
		Search:        q.Get("search"),
		State:         q.Get("state"),
		District:      q.Get("district"),
		MinPrice:      queryFloat(r, "minPrice"),
		MaxPrice:      queryFloat(r, "maxPrice"),
		MinRating:     queryFloat(r, "ratingFloor"),
		OnlyAvailable: true,
		SortBy:        q.Get("sort"),
		Page:          queryInt(r, "page", 1),
		PageSize:      queryInt(r, "pageSize", 20),
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"products":   result.Products,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalPages": result.TotalPages,
	})
}

// ByFarmer is the public storefront view of one farmer's listings.
func (h *ProductHandler) ByFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := pathID(r, "farmerID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	result, err := h.catalog.ListProducts(r.Context(), repository.ListProductsParams{
		FarmerID:      farmerID,
		OnlyAvailable: true,
		Page:          queryInt(r, "page", 1),
		PageSize:      queryInt(r, "pageSize", 20),
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"products":   result.Products,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalPages": result.TotalPages,
	})
}

// MyProducts lists the authenticated farmer's own listings.
func (h *ProductHandler) MyProducts(w http.ResponseWriter, r *http.Request) {
	farmerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	result, err := h.catalog.ListFarmerProducts(r.Context(), farmerID, queryInt(r, "page", 1), queryInt(r, "pageSize", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"products":   result.Products,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalPages": result.TotalPages,
	})
}

func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		respondError(w, h.log, service.ErrValidation)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, h.log, service.ErrValidation)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	product, err := h.catalog.UploadProductImage(r.Context(), actorID, id, header.Filename, data)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"product": product})
}

func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		ObjectKey string `json:"objectKey"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	product, err := h.catalog.RemoveProductImage(r.Context(), actorID, id, req.ObjectKey)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"product": product})
}
