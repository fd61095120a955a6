package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"forwarded list takes the first hop", "10.0.0.1:1234",
			map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"real ip when no forwarded header", "10.0.0.1:1234",
			map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"socket address without port", "192.0.2.4:5678", nil, "192.0.2.4"},
		{"socket address already bare", "192.0.2.4", nil, "192.0.2.4"},
		{"empty forwarded header falls through", "192.0.2.4:5678",
			map[string]string{"X-Forwarded-For": ""}, "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := clientIP(c); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
