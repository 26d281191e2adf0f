package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"loanportal/internal/usecase/catalog"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	uc  *catalog.Usecase
	log *slog.Logger
}

func NewProductHandler(uc *catalog.Usecase, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{uc: uc, log: logger}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	loans, err := h.uc.ListActive(c.Request().Context())
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "list products failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load loan products"})
	}
	if loans == nil {
		loans = []catalog.ProductSummary{}
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": loans})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	dto, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "get product failed", "id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load loan product"})
	}
	return c.JSON(http.StatusOK, dto)
}
