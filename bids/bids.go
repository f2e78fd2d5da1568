package bids

import (
	"encoding/json"
	"log"
	"net/http"

	"agromandi/models"
	"agromandi/mq"
	"agromandi/store"
	"agromandi/utils"

	"github.com/julienschmidt/httprouter"
)

func CreateBid(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	buyerID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input models.BidInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	product, err := store.DB.GetProductByID(r.Context(), input.ProductID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	if product.Status != models.ProductActive {
		utils.RespondWithError(w, http.StatusBadRequest, "Product is not available for bidding")
		return
	}

	bid, err := store.DB.CreateBid(r.Context(), models.Bid{
		ProductID: input.ProductID,
		BuyerID:   buyerID,
		Amount:    input.Amount,
		Quantity:  input.Quantity,
		Message:   input.Message,
	})
	if err != nil {
		log.Printf("bids: create: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create bid")
		return
	}

	go mq.Emit("bid-placed", "bid", bid.ID, buyerID)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "bid": bid})
}

func GetProductBids(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	productID := utils.ParseInt(ps.ByName("id"))
	if productID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	list, err := store.DB.GetBidsByProductID(r.Context(), productID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bids")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "bids": list})
}

func GetUserBids(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	list, err := store.DB.GetBidsByBuyerID(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bids")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "bids": list})
}

// UpdateBidStatus lets the farmer owning the bid's product accept,
// reject or counter a pending bid. Accepting also marks the product
// sold; the two flips happen in one store-level critical section.
func UpdateBidStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bidID := utils.ParseInt(ps.ByName("id"))
	if bidID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}

	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input struct {
		Status models.BidStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !models.ValidBidStatus(input.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	bid, err := store.DB.GetBidByID(r.Context(), bidID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	product, err := store.DB.GetProductByID(r.Context(), bid.ProductID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	if product.FarmerID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "You don't have permission to update this bid")
		return
	}

	if input.Status == models.BidAccepted {
		updated, soldProduct, err := store.DB.AcceptBid(r.Context(), bidID)
		if err != nil {
			utils.RespondWithStoreError(w, err)
			return
		}
		go mq.Emit("bid-accepted", "bid", updated.ID, userID)
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "bid": updated, "product": soldProduct})
		return
	}

	updated, err := store.DB.UpdateBidStatus(r.Context(), bidID, input.Status)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	go mq.Emit("bid-"+string(input.Status), "bid", updated.ID, userID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "bid": updated})
}
