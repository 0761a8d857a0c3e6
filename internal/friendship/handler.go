package friendship

import (
	"net/http"

	"go.uber.org/zap"

	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
)

type Handler struct {
	Service *Service
	logger  *zap.SugaredLogger
}

func NewHandler(s *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{Service: s, logger: logger}
}

// SendRequest handles POST /friendship_request/{id} where id is the getter.
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, otherID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	status, err := h.Service.SendRequest(r.Context(), userID, otherID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Status{Status: status})
}

// RemoveRequest handles DELETE /friendship_request/{id} where id is the request.
func (h *Handler) RemoveRequest(w http.ResponseWriter, r *http.Request) {
	userID, requestID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.RemoveRequest(r.Context(), userID, requestID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) IncomingRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	requests, err := h.Service.IncomingRequests(r.Context(), userID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RequestsResponse{FriendshipRequests: requests})
}

func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	friends, err := h.Service.Friends(r.Context(), userID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, FriendsResponse{FriendsList: friends})
}

func (h *Handler) IsFriend(w http.ResponseWriter, r *http.Request) {
	userID, otherID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	isFriend, err := h.Service.IsFriend(r.Context(), userID, otherID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, IsFriendResponse{IsFriend: isFriend})
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.RemoveFriend(r.Context(), userID, friendID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) callerAndID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return 0, 0, false
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return 0, 0, false
	}
	return userID, id, true
}
