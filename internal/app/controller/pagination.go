package controller

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
)

const invalidPageMessage = "Неправильная страница"

// PaginatedResponse is the envelope of every paginated list.
type PaginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// Paginator reads page/limit query parameters.
type Paginator struct {
	defaultSize int
	maxSize     int
}

func NewPaginator(defaultSize, maxSize int) *Paginator {
	if defaultSize <= 0 {
		defaultSize = 6
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &Paginator{defaultSize: defaultSize, maxSize: maxSize}
}

// Page is a requested window of a list.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Parse returns the requested page. A non-numeric or non-positive page is
// answered with 404 and ok=false. An invalid limit falls back to the default.
func (p *Paginator) Parse(c *gin.Context) (Page, bool) {
	page := Page{Number: 1, Size: p.defaultSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apperrors.RespondWithDetail(c, http.StatusNotFound, apperrors.ValidationInvalidPage, invalidPageMessage)
			return page, false
		}
		page.Number = n
	}

	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = n
		}
	}
	if page.Size > p.maxSize {
		page.Size = p.maxSize
	}
	return page, true
}

// Respond writes the envelope, or 404 when the page lies past the end.
// The first page always exists, even for an empty list.
func (p *Paginator) Respond(c *gin.Context, urls *URLBuilder, page Page, total int64, results interface{}) {
	if page.Number > 1 && int64(page.Offset()) >= total {
		apperrors.RespondWithDetail(c, http.StatusNotFound, apperrors.ValidationInvalidPage, invalidPageMessage)
		return
	}

	resp := PaginatedResponse{Count: total, Results: results}
	if int64(page.Number*page.Size) < total {
		next := pageURL(c, urls, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(c, urls, page.Number-1)
		resp.Previous = &prev
	}
	c.JSON(http.StatusOK, resp)
}

// pageURL rewrites the current request URL to point at page n. Page 1 drops
// the parameter.
func pageURL(c *gin.Context, urls *URLBuilder, n int) string {
	query := url.Values{}
	for key, values := range c.Request.URL.Query() {
		query[key] = values
	}
	if n <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(n))
	}

	u := urls.Absolute(c, c.Request.URL.Path)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
