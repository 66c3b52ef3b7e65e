package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetrics_CountsAndExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/products/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Hit an instrumented route twice; the raw URL must not appear as a label.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/p42", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET /products/p42 -> %d", w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()

	if !strings.Contains(body, `http_requests_total{method="GET",path="/products/:id",status="200"}`) {
		t.Fatalf("expected counter with route-pattern label, got:\n%s", snippetAround(body, "http_requests_total"))
	}
	if strings.Contains(body, `path="/products/p42"`) {
		t.Fatalf("raw URL leaked into metric labels")
	}
	if !strings.Contains(body, "http_request_duration_seconds") || !strings.Contains(body, "http_response_size_bytes") {
		t.Fatalf("expected latency and size metrics in exposition")
	}
}

func TestMetrics_PathFallbackOn404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `path="/nowhere",status="404"`) {
		t.Fatalf("expected raw-path fallback label for unmatched route")
	}
}

// snippetAround returns the lines of s containing sub, for focused failure output.
func snippetAround(s, sub string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, sub) {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
