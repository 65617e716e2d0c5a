package programs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"festbook/internal/festapi"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupProgramRoutes(r.Group("/api/v1"), NewController(svc))
	return r
}

func TestController_GetProgram(t *testing.T) {
	src := &fakeSource{programs: map[int64]festapi.Program{
		42: {ID: 42, Title: "Keynote", BookingType: festapi.BookingTypeSolo},
	}}
	r := setupRouter(NewService(src, nil, 0))

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "found", path: "/api/v1/programs/42", want: http.StatusOK},
		{name: "missing", path: "/api/v1/programs/43", want: http.StatusNotFound},
		{name: "bad id", path: "/api/v1/programs/abc", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/programs/42", nil))
	var body struct {
		Status string          `json:"status"`
		Data   festapi.Program `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "Keynote", body.Data.Title)
}
