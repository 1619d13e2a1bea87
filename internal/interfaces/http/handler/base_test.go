package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/quelyos/backend/internal/domain/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("lookup: %w", shared.ErrInsufficientStock), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"rate limited", shared.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"provider down", shared.ErrProviderDown, http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE"},
		{"custom invalid code", shared.NewDomainError("INVALID_KIND", "Type de contenu inconnu"), http.StatusBadRequest, "INVALID_KIND"},
		{"opaque error", errors.New("pq: connection reset"), http.StatusInternalServerError, "SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/boom", func(c *gin.Context) { h.HandleError(c, tc.err) })

			w := perform(r, http.MethodGet, "/boom")
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			assert.Contains(t, w.Body.String(), tc.wantCode)
			if tc.name == "opaque error" {
				// raw driver errors never leak to the client
				assert.NotContains(t, w.Body.String(), "pq:")
			}
		})
	}
}

func TestBaseHandler_Envelopes(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { h.Success(c, gin.H{"name": "Couscous 1kg"}) })
	r.GET("/created", func(c *gin.Context) { h.Created(c, gin.H{"id": "abc"}) })
	r.GET("/none", func(c *gin.Context) { h.NoContent(c) })
	r.GET("/paged", func(c *gin.Context) { h.SuccessWithMeta(c, []string{"a", "b"}, 7, 2, 3) })

	t.Run("success", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/ok")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"name":"Couscous 1kg"}}`, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/created")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/none")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("paged meta", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/paged")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":7`)
		assert.Contains(t, w.Body.String(), `"total_pages":3`)
	})
}

func TestParseIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/things/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	t.Run("valid uuid", func(t *testing.T) {
		id := uuid.New()
		w := perform(r, http.MethodGet, "/things/"+id.String())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), w.Body.String())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/things/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})
}

func TestParseFilter(t *testing.T) {
	r := gin.New()
	r.GET("/list", func(c *gin.Context) {
		filter, ok := parseFilter(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"page":      filter.Page,
			"page_size": filter.PageSize,
			"order_by":  filter.OrderBy,
			"order_dir": filter.OrderDir,
		})
	})

	t.Run("defaults apply", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/list")
		assert.Contains(t, w.Body.String(), `"page":1`)
		assert.Contains(t, w.Body.String(), `"page_size":20`)
		assert.Contains(t, w.Body.String(), `"order_by":"created_at"`)
	})

	t.Run("query overrides", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/list?page=3&page_size=50&order_dir=asc")
		assert.Contains(t, w.Body.String(), `"page":3`)
		assert.Contains(t, w.Body.String(), `"page_size":50`)
		assert.Contains(t, w.Body.String(), `"order_dir":"asc"`)
	})

	t.Run("rejects out-of-range page size", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/list?page_size=5000")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_Webhook_UnknownProvider(t *testing.T) {
	h := NewPaymentHandler(nil)
	r := gin.New()
	r.POST("/webhooks/:provider", h.Webhook)

	w := perform(r, http.MethodPost, "/webhooks/paypal")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
