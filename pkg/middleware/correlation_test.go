package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/labops-platform/routine-service/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLaboratoryContext_PropagatesHeader(t *testing.T) {
	var fromGin string
	var fromRequest any

	router := gin.New()
	router.Use(LaboratoryContext())
	router.GET("/routines", func(c *gin.Context) {
		fromGin = GetLaboratoryID(c)
		fromRequest = c.Request.Context().Value(logging.LaboratoryIDKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/routines", nil)
	req.Header.Set(HeaderLaboratoryID, "lab-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if fromGin != "lab-7" {
		t.Errorf("GetLaboratoryID() = %q, want lab-7", fromGin)
	}
	if fromRequest != "lab-7" {
		t.Errorf("request context laboratoryId = %v, want lab-7", fromRequest)
	}
}

func TestLaboratoryContext_NoHeader(t *testing.T) {
	var fromGin string
	var fromRequest any

	router := gin.New()
	router.Use(LaboratoryContext())
	router.GET("/routines", func(c *gin.Context) {
		fromGin = GetLaboratoryID(c)
		fromRequest = c.Request.Context().Value(logging.LaboratoryIDKey)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/routines", nil))

	if fromGin != "" {
		t.Errorf("GetLaboratoryID() = %q, want empty", fromGin)
	}
	if fromRequest != nil {
		t.Errorf("request context laboratoryId = %v, want nil", fromRequest)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/routines", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("generates when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/routines", nil))
		if w.Header().Get(HeaderRequestID) == "" {
			t.Error("expected generated request ID in response header")
		}
	})

	t.Run("echoes supplied ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/routines", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if got := w.Header().Get(HeaderRequestID); got != "req-123" {
			t.Errorf("request ID = %q, want req-123", got)
		}
	})
}
