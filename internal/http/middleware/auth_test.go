package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/gigpay/internal/model"
)

type staticParser map[string]string

func (p staticParser) Parse(token string) (model.Principal, error) {
	id, ok := p[token]
	if !ok {
		return model.Principal{}, errors.New("unknown token")
	}
	return model.Principal{ID: id}, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(staticParser{"good": "client-1"}))
	router.GET("/whoami", func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, principal.ID)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter()

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"Bearer good", http.StatusOK, "client-1"},
		{"bearer good", http.StatusOK, "client-1"},
		{"Bearer bad", http.StatusUnauthorized, ""},
		{"good", http.StatusUnauthorized, ""},
		{"", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, tc.status, rec.Code, tc.header)
		if tc.body != "" {
			require.Equal(t, tc.body, rec.Body.String())
		}
	}
}
