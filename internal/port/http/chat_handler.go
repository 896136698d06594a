package http

import (
	"net/http"

	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/service"
)

type ChatHandler struct {
	chats service.ChatService
	log   logger.Logger
}

func NewChatHandler(chats service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, log: log.Named("chat_handler")}
}

func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		PeerID string `json:"peerId"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	peerID, err := parseObjectID(req.PeerID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	chat, err := h.chats.OpenChat(r.Context(), userID, peerID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"chat": chat})
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	message, err := h.chats.SendMessage(r.Context(), userID, chatID, req.Content)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"message": message})
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	chat, err := h.chats.GetChat(r.Context(), userID, chatID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"chat": chat})
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	chats, err := h.chats.ListChats(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"chats": chats})
}
