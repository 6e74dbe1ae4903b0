package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/model"
	"github.com/restaurant-eugene/booking-api/internal/repository"
)

// MenuHandler serves the public menu and the staff back office that
// edits it.  Price edits only affect future orders; existing
// reservations keep their snapshots.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

func NewMenuHandler(m *repository.MenuRepo) *MenuHandler {
	return &MenuHandler{Menu: m}
}

// ----- DTOs -----

type categoryPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type menuItemPart struct {
	ID          uint64  `json:"id"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceCents  uint32  `json:"price_cents"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
}

func toMenuItemPart(it *model.MenuItem) menuItemPart {
	return menuItemPart{
		ID:          it.ID,
		CategoryID:  it.CategoryID,
		Name:        it.Name,
		Description: it.Description,
		PriceCents:  it.PriceCents,
		ImageURL:    it.ImageURL,
		IsActive:    it.IsActive,
	}
}

type menuItemReq struct {
	CategoryID  *uint64 `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceCents  uint32  `json:"price_cents"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

// ListMenu is the public menu: active dishes only.
func (h *MenuHandler) ListMenu(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Menu.ListItems(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]menuItemPart, 0, len(items))
	for i := range items {
		out = append(out, toMenuItemPart(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListCategories is public.
func (h *MenuHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cats, err := h.Menu.ListCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]categoryPart, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryPart{ID: cat.ID, Name: cat.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// ----- STAFF back office -----

// ListAllItems includes inactive dishes for the back office.
func (h *MenuHandler) ListAllItems(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Menu.ListItems(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]menuItemPart, 0, len(items))
	for i := range items {
		out = append(out, toMenuItemPart(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *MenuHandler) CreateCategory(c echo.Context) error {
	var req categoryPart
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Menu.CreateCategory(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, categoryPart{ID: id, Name: strings.TrimSpace(req.Name)})
}

func (h *MenuHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Menu.DeleteCategory(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MenuHandler) CreateItem(c echo.Context) error {
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive price_cents required"})
	}

	item := &model.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Menu.CreateItem(ctx, item)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	item.ID = id
	return c.JSON(http.StatusCreated, toMenuItemPart(item))
}

// UpdateItem edits a dish, price included.  Orders created before the
// edit keep their snapshot prices untouched.
func (h *MenuHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	item, err := h.Menu.GetItem(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		item.Name = name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.PriceCents > 0 {
		item.PriceCents = req.PriceCents
	}
	if req.CategoryID != nil {
		item.CategoryID = req.CategoryID
	}
	if req.ImageURL != nil {
		item.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.Menu.UpdateItem(ctx, item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toMenuItemPart(item))
}

// DeleteItem soft-deletes: the dish disappears from the public menu
// but stays referenced by historical line items.
func (h *MenuHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Menu.DeleteItem(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
