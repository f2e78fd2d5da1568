package transport

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

func CreateTransportRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requesterID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input models.TransportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	if _, err := store.DB.GetProductByID(r.Context(), input.ProductID); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	request, err := store.DB.CreateTransportRequest(r.Context(), models.TransportRequest{
		ProductID:        input.ProductID,
		RequesterID:      requesterID,
		PickupLocation:   input.PickupLocation,
		DeliveryLocation: input.DeliveryLocation,
		Quantity:         input.Quantity,
		Date:             input.Date,
	})
	if err != nil {
		log.Printf("transport: create: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create transport request")
		return
	}

	go mq.Emit("transport-requested", "transport", request.ID, requesterID)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "request": request})
}

func GetRequesterTransportRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	list, err := store.DB.GetTransportRequestsByRequesterID(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transport requests")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "requests": list})
}

func GetTransporterTransportRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	list, err := store.DB.GetTransportRequestsByTransporterID(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transport requests")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "requests": list})
}

// GetAvailableTransportRequests lists unclaimed pending requests for
// transporters to pick up.
func GetAvailableTransportRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := store.DB.GetAvailableTransportRequests(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transport requests")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "requests": list})
}

// UpdateTransportStatus covers both the transporter's claim (accepted,
// while unclaimed, sets transporterId exactly once) and the later
// in_transit/delivered moves, which either the requester or the
// assigned transporter may fire.
func UpdateTransportStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := utils.ParseInt(ps.ByName("id"))
	if requestID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transport request ID")
		return
	}

	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}
	role, _ := utils.RoleFromRequest(r)

	var input struct {
		Status models.TransportStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !models.ValidTransportStatus(input.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	request, err := store.DB.GetTransportRequestByID(r.Context(), requestID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	if role == models.RoleTransporter {
		if input.Status == models.TransportAccepted && request.TransporterID == nil {
			claimed, err := store.DB.ClaimTransportRequest(r.Context(), requestID, userID)
			if err != nil {
				utils.RespondWithStoreError(w, err)
				return
			}
			go mq.Emit("transport-claimed", "transport", claimed.ID, userID)
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "request": claimed})
			return
		}
		if request.TransporterID == nil || *request.TransporterID != userID {
			utils.RespondWithError(w, http.StatusForbidden, "You don't have permission to update this transport request")
			return
		}
	} else {
		if request.RequesterID != userID {
			utils.RespondWithError(w, http.StatusForbidden, "You don't have permission to update this transport request")
			return
		}
		// only transporters claim
		if input.Status == models.TransportAccepted {
			utils.RespondWithError(w, http.StatusForbidden, "Only transporters can accept transport requests")
			return
		}
	}

	updated, err := store.DB.UpdateTransportRequestStatus(r.Context(), requestID, input.Status)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	go mq.Emit("transport-"+string(input.Status), "transport", updated.ID, userID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "request": updated})
}
