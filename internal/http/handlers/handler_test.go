package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authCtx(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestGetUserID(t *testing.T) {
	c := authCtx(t)
	if _, ok := getUserID(c); ok {
		t.Fatal("no user_id in context, expected ok=false")
	}

	c.Set("user_id", int64(42))
	uid, ok := getUserID(c)
	if !ok || uid != 42 {
		t.Fatalf("int64 user_id: got %d, ok=%v", uid, ok)
	}

	// JWT claims decode numbers as float64
	c.Set("user_id", float64(7))
	uid, ok = getUserID(c)
	if !ok || uid != 7 {
		t.Fatalf("float64 user_id: got %d, ok=%v", uid, ok)
	}

	c.Set("user_id", "42")
	if _, ok := getUserID(c); ok {
		t.Fatal("string user_id must not be accepted")
	}
}
