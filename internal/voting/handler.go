package voting

import (
	"net/http"

	"go.uber.org/zap"

	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
)

type Handler struct {
	engine *Engine
	logger *zap.SugaredLogger
}

func NewHandler(engine *Engine, logger *zap.SugaredLogger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Vote handles POST /vote/{id} where id is a variant.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	variantID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if err := h.engine.CastVote(r.Context(), variantID, userID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

// Withdraw handles DELETE /vote/{id} where id is a post.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	postID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if err := h.engine.WithdrawVote(r.Context(), postID, userID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

// VotedUsers handles GET /voted_users/{id} where id is a variant.
func (h *Handler) VotedUsers(w http.ResponseWriter, r *http.Request) {
	variantID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	voters, err := h.engine.VotedUsers(r.Context(), variantID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, VotedUsersResponse{Users: voters})
}
