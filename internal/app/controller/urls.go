package controller

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// URLBuilder turns server-relative paths into absolute URLs.
type URLBuilder struct {
	publicURL string
}

// NewURLBuilder uses publicURL as the base when set, otherwise the base is
// derived from each request.
func NewURLBuilder(publicURL string) *URLBuilder {
	return &URLBuilder{publicURL: strings.TrimRight(publicURL, "/")}
}

// Base returns scheme://host of the API.
func (b *URLBuilder) Base(c *gin.Context) string {
	if b.publicURL != "" {
		return b.publicURL
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := c.Request.Host
	if forwarded := c.GetHeader("X-Forwarded-Host"); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + host
}

// Absolute leaves absolute URLs untouched and prefixes paths with Base.
func (b *URLBuilder) Absolute(c *gin.Context, pathOrURL string) string {
	if pathOrURL == "" {
		return ""
	}
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return b.Base(c) + pathOrURL
}
