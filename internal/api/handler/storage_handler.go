package handler

import (
	"context"
	"net/http"

	"leet2git/internal/common"
	"leet2git/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type StorageInfoProvider interface {
	StorageInfo(ctx context.Context) (model.StorageInfo, error)
}

// StorageHandler reports how much of each storage tier is in use.
type StorageHandler struct {
	store StorageInfoProvider
}

func NewStorageHandler(store StorageInfoProvider) *StorageHandler {
	return &StorageHandler{store: store}
}

func (h *StorageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.info)
}

func (h *StorageHandler) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.StorageInfo(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, info)
}
