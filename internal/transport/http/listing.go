package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/app"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// ItemLister is the minimal interface needed to serve listing pages.
type ItemLister interface {
	ListItems(ctx context.Context, in app.ListItemsInput) (app.ListItemsResult, error)
}

// HandleListItems returns the paginated storefront listing.
func HandleListItems(svc ItemLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		in := app.ListItemsInput{
			Sort: domain.ParseListingSort(q.Get("sort")),
			Filters: domain.ListingFilters{
				CategoryIDs: q["category"],
				ProductIDs:  q["product_id"],
				ItemIDs:     q["item_id"],
			},
		}

		var err error
		if in.Page, err = intParam(q.Get("page"), 1); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "invalid page")
			return
		}
		if in.Limit, err = intParam(q.Get("limit"), 0); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "invalid limit")
			return
		}
		if in.Filters.MinQuality, err = intParam(q.Get("min_quality"), 0); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "invalid min_quality")
			return
		}
		if in.Filters.PriceMin, err = centsParam(q.Get("price_min")); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "invalid price_min")
			return
		}
		if in.Filters.PriceMax, err = centsParam(q.Get("price_max")); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "invalid price_max")
			return
		}

		res, err := svc.ListItems(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := listItemsResponse{
			Items: make([]listedItemResponse, 0, len(res.Items)),
			Page:  res.Page,
			Limit: res.Limit,
			Total: res.Total,
			Pages: res.Pages,
		}
		for _, li := range res.Items {
			resp.Items = append(resp.Items, toListedItemResponse(li))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func centsParam(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type listItemsResponse struct {
	Items []listedItemResponse `json:"items"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
	Total int                  `json:"total"`
	Pages int                  `json:"pages"`
}

type listedItemResponse struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	ExpiresAt  time.Time          `json:"expires_at"`
	Price      int64              `json:"price"`
	Product    productResponse    `json:"product"`
	Categories []categoryResponse `json:"categories"`
	Images     []imageResponse    `json:"images"`
	HighestBid *bidResponse       `json:"highest_bid"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type imageResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

func toListedItemResponse(li domain.ListedItem) listedItemResponse {
	out := listedItemResponse{
		ID:         li.Item.ID,
		Status:     string(li.Item.Status),
		ExpiresAt:  li.Item.ExpiresAt,
		Price:      li.Product.PriceInitial,
		Product:    toProductResponse(li.Product),
		Categories: make([]categoryResponse, 0, len(li.Categories)),
		Images:     make([]imageResponse, 0, len(li.Images)),
	}
	if li.HighestBid != nil {
		out.Price = li.HighestBid.Amount
		out.HighestBid = &bidResponse{
			ID:        li.HighestBid.ID,
			ItemID:    li.HighestBid.ItemID,
			UserID:    li.HighestBid.UserID,
			Amount:    li.HighestBid.Amount,
			CreatedAt: li.HighestBid.CreatedAt,
		}
	}
	for _, c := range li.Categories {
		out.Categories = append(out.Categories, categoryResponse{ID: c.ID, Name: c.Name})
	}
	for _, img := range li.Images {
		out.Images = append(out.Images, imageResponse{ID: img.ID, URL: img.URL, Position: img.Position})
	}
	return out
}
