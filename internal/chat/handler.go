package chat

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-social/internal/apperr"
	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
)

var errForeignSocket = apperr.Forbidden("foreign_socket", "you can only open your own chat socket")

type Handler struct {
	Service   *Service
	pipeline  *Pipeline
	upgrader  websocket.Upgrader
	logger    *zap.SugaredLogger
	maxUpload int64
}

// NewHandler builds the chat handlers. With no allowed origins only
// same-origin upgrades are accepted.
func NewHandler(s *Service, p *Pipeline, allowedOrigins []string, logger *zap.SugaredLogger, maxUpload int64) *Handler {
	return &Handler{
		Service:  s,
		pipeline: p,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		logger:    logger,
		maxUpload: maxUpload,
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeWs upgrades /chatsocket/{id} for the authenticated caller and runs
// the delivery pipeline until the socket closes.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, pathID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	if userID != pathID {
		httpx.Error(w, h.logger, errForeignSocket)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debugw("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	// The request context must not end the session.
	ctx := context.WithoutCancel(r.Context())
	h.pipeline.Serve(ctx, NewClient(userID, conn))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, recipientID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.History(r.Context(), userID, recipientID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, messageID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteMessage(r.Context(), userID, messageID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.OK)
}

func (h *Handler) AddMedia(w http.ResponseWriter, r *http.Request) {
	userID, messageID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	data, err := httpx.ReadUpload(w, r, h.maxUpload)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}

	id, err := h.Service.AddMedia(r.Context(), userID, messageID, data)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MediaResponse{Status: "ok", ID: id})
}

func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	userID, mediaID, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	media, err := h.Service.Media(r.Context(), userID, mediaID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.Image(w, media.Image)
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
