package feed

import (
	"net/http"

	"go.uber.org/zap"

	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
)

type Handler struct {
	Aggregator *Aggregator
	logger     *zap.SugaredLogger
}

func NewHandler(a *Aggregator, logger *zap.SugaredLogger) *Handler {
	return &Handler{Aggregator: a, logger: logger}
}

// Posts serves GET /posts?limit=&offset=.
func (h *Handler) Posts(w http.ResponseWriter, r *http.Request) {
	viewerID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	posts, err := h.Aggregator.Posts(r.Context(), viewerID, page)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PostsResponse{Posts: posts})
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	viewerID, postID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	post, err := h.Aggregator.Post(r.Context(), viewerID, postID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	viewerID, authorID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	h.userPosts(w, r, viewerID, authorID)
}

func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	viewerID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	h.userPosts(w, r, viewerID, viewerID)
}

func (h *Handler) userPosts(w http.ResponseWriter, r *http.Request, viewerID, authorID int64) {
	page, err := pageFrom(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	posts, err := h.Aggregator.UserPosts(r.Context(), viewerID, authorID, page)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PostsResponse{Posts: posts})
}

func (h *Handler) MyPage(w http.ResponseWriter, r *http.Request) {
	viewerID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	h.profile(w, r, viewerID, viewerID)
}

func (h *Handler) UserPage(w http.ResponseWriter, r *http.Request) {
	viewerID, userID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	h.profile(w, r, viewerID, userID)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, viewerID, userID int64) {
	profile, err := h.Aggregator.Profile(r.Context(), viewerID, userID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
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

func pageFrom(r *http.Request) (Page, error) {
	limit, err := httpx.IntQuery(r, "limit", DefaultPageSize)
	if err != nil {
		return Page{}, err
	}
	offset, err := httpx.IntQuery(r, "offset", 0)
	if err != nil {
		return Page{}, err
	}
	return Page{Limit: limit, Offset: offset}, nil
}
