package products

import (
	"encoding/json"
	"log"
	"net/http"

	"agromandi/models"
	"agromandi/mq"
	"agromandi/rdx"
	"agromandi/store"
	"agromandi/utils"

	"github.com/julienschmidt/httprouter"
)

func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	farmerID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	product, err := store.DB.CreateProduct(r.Context(), models.Product{
		FarmerID:    farmerID,
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		Price:       input.Price,
		Location:    input.Location,
		Tags:        input.Tags,
	})
	if err != nil {
		log.Printf("products: create: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	go mq.Emit("product-created", "product", product.ID, farmerID)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "product": product})
}

func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := store.ProductFilter{
		Category: q.Get("category"),
		Status:   models.ProductStatus(q.Get("status")),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Limit:    utils.ParseInt(q.Get("limit")),
		Offset:   utils.ParseInt(q.Get("offset")),
	}

	// Unfiltered first page is cache-friendly; mq worker drops the key
	// on any product or bid mutation.
	cacheable := filter == store.ProductFilter{}
	if cacheable {
		if cached, err := rdx.RdxGet("cache:products"); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	list, err := store.DB.GetProducts(r.Context(), filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	payload := utils.M{"success": true, "products": list, "total": len(list)}
	if cacheable {
		if data, err := json.Marshal(payload); err == nil {
			rdx.RdxSet("cache:products", string(data))
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, payload)
}

func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := utils.ParseInt(ps.ByName("id"))
	if id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := store.DB.GetProductByID(r.Context(), id)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "product": product})
}

func EditProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := utils.ParseInt(ps.ByName("id"))
	if id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	product, err := store.DB.GetProductByID(r.Context(), id)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	if product.FarmerID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "You don't have permission to update this product")
		return
	}

	var input struct {
		Name        *string   `json:"name"`
		Category    *string   `json:"category"`
		Description *string   `json:"description"`
		Quantity    *float64  `json:"quantity"`
		Unit        *string   `json:"unit"`
		Price       *float64  `json:"price"`
		Location    *string   `json:"location"`
		Tags        *[]string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var ve models.ValidationError
	if input.Quantity != nil && *input.Quantity <= 0 {
		ve.Add("quantity", "Quantity must be positive")
	}
	if input.Price != nil && *input.Price <= 0 {
		ve.Add("price", "Price must be positive")
	}
	if err := ve.OrNil(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	patch := store.ProductPatch{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		Price:       input.Price,
		Location:    input.Location,
		Tags:        input.Tags,
	}
	if patch == (store.ProductPatch{}) {
		utils.RespondWithError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	updated, err := store.DB.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	go mq.Emit("product-updated", "product", updated.ID, userID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "product": updated})
}

func GetUserProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	list, err := store.DB.GetProductsByFarmerID(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "products": list})
}
