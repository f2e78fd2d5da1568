package messages

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"agromandi/models"
	"agromandi/mq"
	"agromandi/rdx"
	"agromandi/store"
	"agromandi/utils"

	"github.com/julienschmidt/httprouter"
)

func SendMessage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	senderID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input models.MessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	if _, err := store.DB.GetUserByID(r.Context(), input.ReceiverID); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	message, err := store.DB.CreateMessage(r.Context(), models.Message{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Content:    input.Content,
	})
	if err != nil {
		log.Printf("messages: create: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	// receiver's unread count is stale now
	rdx.RdxDel(fmt.Sprintf("unread:%d", input.ReceiverID))
	go mq.Emit("message-sent", "message", message.ID, senderID)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "message": message})
}

// GetConversation returns all traffic between the caller and the other
// user in chronological order. The "unread" segment shares this route
// (httprouter rejects a static sibling of :userId), so it is dispatched
// here.
func GetConversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("userId") == "unread" {
		GetUnreadMessages(w, r, ps)
		return
	}

	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	otherID := utils.ParseInt(ps.ByName("userId"))
	if otherID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if _, err := store.DB.GetUserByID(r.Context(), otherID); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	list, err := store.DB.GetMessagesBetweenUsers(r.Context(), userID, otherID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "messages": list})
}

func GetUnreadMessages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	list, err := store.DB.GetUnreadMessagesByUserID(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	rdx.SetWithExpiry(fmt.Sprintf("unread:%d", userID), fmt.Sprintf("%d", len(list)), 5*time.Minute)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "messages": list, "count": len(list)})
}

// MarkMessageRead flips the read flag, receiver only, one way.
func MarkMessageRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	messageID := utils.ParseInt(ps.ByName("id"))
	if messageID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	message, err := store.DB.GetMessageByID(r.Context(), messageID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	if message.ReceiverID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "You don't have permission to mark this message as read")
		return
	}

	updated, err := store.DB.MarkMessageRead(r.Context(), messageID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	rdx.RdxDel(fmt.Sprintf("unread:%d", userID))

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": updated})
}
