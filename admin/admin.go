package admin

import (
	"encoding/json"
	"net/http"

	"agromandi/models"
	"agromandi/mq"
	"agromandi/store"
	"agromandi/utils"

	"github.com/julienschmidt/httprouter"
)

// GetPendingVerifications lists farmers awaiting verification review.
func GetPendingVerifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := store.DB.GetPendingFarmerVerifications(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch verifications")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "verifications": list})
}

// ReviewVerification approves or rejects a farmer's verification.
func ReviewVerification(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	adminID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	farmerID := utils.ParseInt(ps.ByName("userId"))
	if farmerID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var input struct {
		Status models.VerificationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Status != models.VerificationVerified && input.Status != models.VerificationRejected {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	user, err := store.DB.GetUserByID(r.Context(), farmerID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	if user.Role != models.RoleFarmer {
		utils.RespondWithError(w, http.StatusBadRequest, "User is not a farmer")
		return
	}

	updated, err := store.DB.UpdateUser(r.Context(), farmerID, store.UserPatch{
		VerificationStatus: &input.Status,
	})
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	go mq.Emit("verification-"+string(input.Status), "user", farmerID, adminID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": updated})
}
