package post

import (
	"net/http"

	"go.uber.org/zap"

	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
)

type Handler struct {
	Service   *Service
	logger    *zap.SugaredLogger
	maxUpload int64
}

func NewHandler(s *Service, logger *zap.SugaredLogger, maxUpload int64) *Handler {
	return &Handler{Service: s, logger: logger, maxUpload: maxUpload}
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	var req CreatePostRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if _, err := h.Service.CreatePost(r.Context(), userID, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req EditPostRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if err := h.Service.EditPost(r.Context(), userID, postID, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeletePost(r.Context(), userID, postID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if _, err := h.Service.CreateComment(r.Context(), userID, postID, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteComment(r.Context(), userID, commentID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.ToggleLike(r.Context(), userID, postID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) AddMedia(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	data, err := httpx.ReadUpload(w, r, h.maxUpload)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	id, err := h.Service.AddMedia(r.Context(), userID, postID, data)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MediaResponse{Status: "ok", ID: id})
}

func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	data, err := h.Service.Media(r.Context(), mediaID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.Image(w, data)
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	userID, mediaID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteMedia(r.Context(), userID, mediaID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) ComplainAboutPost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.ComplainAboutPost(r.Context(), userID, postID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) ComplainAboutComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.ComplainAboutComment(r.Context(), userID, commentID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

// callerAndID reads the caller and the {id} path parameter, writing the
// error response itself when either is missing.
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
