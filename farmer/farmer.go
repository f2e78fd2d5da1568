package farmer

import (
	"encoding/json"
	"net/http"

	"agromandi/models"
	"agromandi/mq"
	"agromandi/store"
	"agromandi/utils"

	"github.com/julienschmidt/httprouter"
)

// UpdateProfile patches the caller's farmer profile fields.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input struct {
		FullName    *string `json:"fullName"`
		Phone       *string `json:"phone"`
		Location    *string `json:"location"`
		FarmName    *string `json:"farmName"`
		FarmBio     *string `json:"farmBio"`
		FarmAddress *string `json:"farmAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	patch := store.UserPatch{
		FullName:    input.FullName,
		Phone:       input.Phone,
		Location:    input.Location,
		FarmName:    input.FarmName,
		FarmBio:     input.FarmBio,
		FarmAddress: input.FarmAddress,
	}
	if patch == (store.UserPatch{}) {
		utils.RespondWithError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	updated, err := store.DB.UpdateUser(r.Context(), userID, patch)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": updated})
}

// SubmitVerification records the farmer's verification id and resets
// the review status to pending.
func SubmitVerification(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input models.VerificationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	pending := models.VerificationPending
	patch := store.UserPatch{
		VerificationID:     &input.VerificationID,
		VerificationStatus: &pending,
	}
	if input.FarmName != "" {
		patch.FarmName = &input.FarmName
	}
	if input.FarmAddress != "" {
		patch.FarmAddress = &input.FarmAddress
	}

	updated, err := store.DB.UpdateUser(r.Context(), userID, patch)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	go mq.Emit("verification-submitted", "user", userID, userID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": updated})
}

// UpdateCertifications adds or removes a certification label.
func UpdateCertifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input struct {
		Action        string `json:"action"` // add or remove
		Certification string `json:"certification"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var ve models.ValidationError
	if input.Action != "add" && input.Action != "remove" {
		ve.Add("action", "Action must be add or remove")
	}
	if input.Certification == "" {
		ve.Add("certification", "Certification is required")
	}
	if err := ve.OrNil(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	user, err := store.DB.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	certs := make([]string, 0, len(user.Certifications)+1)
	found := false
	for _, c := range user.Certifications {
		if c == input.Certification {
			found = true
			if input.Action == "remove" {
				continue
			}
		}
		certs = append(certs, c)
	}
	if input.Action == "add" && !found {
		certs = append(certs, input.Certification)
	}

	updated, err := store.DB.UpdateUser(r.Context(), userID, store.UserPatch{Certifications: &certs})
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": updated})
}
