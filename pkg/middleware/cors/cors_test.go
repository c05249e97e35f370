package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/classes", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/classes", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestPreflightShortCircuits(t *testing.T) {
	w := serve(nil, http.MethodOptions, "https://lab.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://lab.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnlistedOriginGetsNoAllowHeader(t *testing.T) {
	w := serve([]string{"https://lab.example/"}, http.MethodGet, "https://evil.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve([]string{"https://lab.example/"}, http.MethodGet, "https://lab.example")
	assert.Equal(t, "https://lab.example", w.Header().Get("Access-Control-Allow-Origin"))
}
