package catalog

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/identifiers"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	catalogService *Service
}

type listResponse struct {
	Items []*models.MediaItem `json:"items"`
	Total int                 `json:"total"`
}

func (h *handler) featured(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.catalogService.Featured(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	items, total, err := h.catalogService.Search(ctx, SearchOptions{
		Query:     params.Query,
		SearchBy:  params.SearchBy,
		MediaType: params.MediaType,
		Genre:     params.Genre,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponse{items, total})
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	items, total, err := h.catalogService.List(ctx, ListOptions{
		Query:     params.Query,
		MediaType: params.MediaType,
		Offset:    params.Offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponse{items, total})
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreatePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := CreateOptions{
		Title:       params.Title,
		Author:      params.Author,
		MediaType:   params.MediaType,
		Description: params.Description,
		Genre:       params.Genre,
		Publisher:   params.Publisher,
		Location:    params.Location,
		Pages:       params.Pages,
	}
	if params.ISBN != "" {
		isbn, typ := identifiers.DetectISBN(params.ISBN)
		if typ == identifiers.TypeUnknown {
			return errcodes.ValidationError("ISBN must be a valid ISBN-10 or ISBN-13.")
		}
		opts.ISBN = pointerutil.String(isbn)
	}

	item, err := h.catalogService.Create(ctx, opts)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("item added", logger.Data{
		"item_id":      item.ID,
		"barcode":      item.Barcode,
		"librarian_id": auth.MustFromContext(c).ID,
	})

	resp := struct {
		Item    *models.MediaItem `json:"item"`
		Message string            `json:"message"`
	}{item, fmt.Sprintf("Added %q with barcode %s.", item.Title, item.Barcode)}

	return c.JSON(http.StatusCreated, resp)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return errcodes.NotFound("Item")
	}

	item, err := h.catalogService.Delete(ctx, id)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("item deleted", logger.Data{
		"item_id":      id,
		"librarian_id": auth.MustFromContext(c).ID,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%q deleted.", item.Title),
	})
}
