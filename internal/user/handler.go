package user

import (
	"net/http"

	"go.uber.org/zap"

	"go-social/internal/auth"
	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
)

type Handler struct {
	Service      *Service
	logger       *zap.SugaredLogger
	cookieSecure bool
	maxUpload    int64
}

func NewHandler(s *Service, logger *zap.SugaredLogger, cookieSecure bool, maxUpload int64) *Handler {
	return &Handler{
		Service:      s,
		logger:       logger,
		cookieSecure: cookieSecure,
		maxUpload:    maxUpload,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	u, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	// A new account is logged in right away.
	token, expires, err := h.Service.StartSession(u.ID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	auth.SetCookie(w, token, expires, h.cookieSecure)
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	token, expires, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	auth.SetCookie(w, token, expires, h.cookieSecure)
	httpx.JSON(w, http.StatusOK, LoginResponse{AuthToken: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	auth.ClearCookie(w, h.cookieSecure)
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) MyID(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, IDResponse{ID: userID})
}

func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	var req EditProfileRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if err := h.Service.EditProfile(r.Context(), userID, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := myMiddleware.MustUserID(r.Context())
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	data, err := httpx.ReadUpload(w, r, h.maxUpload)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	if err := h.Service.SetAvatar(r.Context(), userID, data); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	data, err := h.Service.Avatar(r.Context(), userID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.Image(w, data)
}
