package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraceRouter() *gin.Engine {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/trace", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c)+"|"+audit.TraceIDFrom(c.Request.Context()))
	})
	return r
}

func TestTraceID_Generated(t *testing.T) {
	r := newTraceRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trace", nil))
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get(TraceIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id+"|"+id, w.Body.String(), "gin and request context agree")
}

func TestTraceID_Provided(t *testing.T) {
	r := newTraceRouter()
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	req.Header.Set(TraceIDHeader, "panel-7f3a")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "panel-7f3a|panel-7f3a", w.Body.String())
	assert.Equal(t, "panel-7f3a", w.Header().Get(TraceIDHeader))
}

func TestTraceID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
	assert.Equal(t, "", audit.TraceIDFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestTraceID_UniquePerRequest(t *testing.T) {
	r := newTraceRouter()

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/trace", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/trace", nil))

	assert.NotEqual(t, w1.Header().Get(TraceIDHeader), w2.Header().Get(TraceIDHeader))
}
