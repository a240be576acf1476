package handler

import (
	"net/http"

	"bizhub/internal/delivery/http/response"
	"bizhub/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// CacheHandler exposes the query cache snapshot for debugging.
type CacheHandler struct {
	cache service.QueryCache
}

// NewCacheHandler is the constructor for CacheHandler.
func NewCacheHandler(cache service.QueryCache) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// Status reports the cache size, keys and entry states.
func (h *CacheHandler) Status(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.cache.Status(), "Cache status retrieved")
}
