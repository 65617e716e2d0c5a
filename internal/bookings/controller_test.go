package bookings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"festbook/internal/festapi"
	"festbook/internal/shared/config"
	"festbook/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
}

func setupRouter(t *testing.T, h *harness) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	SetupBookingRoutes(r.Group("/api/v1"), NewController(h.svc), cfg)
	return r
}

func tokenFor(t *testing.T, u users.User) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     string(u.Role),
		"type":     "access",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, r *gin.Engine, u *users.User, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, *u))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func openSession(t *testing.T, r *gin.Engine, programID int64) string {
	t.Helper()
	w, env := call(t, r, &student, http.MethodPost, "/api/v1/bookings/sessions", OpenSessionRequest{ProgramID: programID})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	return sess.SessionID
}

func TestController_Auth(t *testing.T) {
	r := setupRouter(t, newHarness(t, nil))

	w, _ := call(t, r, nil, http.MethodPost, "/api/v1/bookings/sessions", OpenSessionRequest{ProgramID: paidSoloID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	college := users.User{ID: 3, Username: "iitm", Role: users.RoleCollege}
	w, _ = call(t, r, &college, http.MethodPost, "/api/v1/bookings/sessions", OpenSessionRequest{ProgramID: paidSoloID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestController_PaidFlow(t *testing.T) {
	h := newHarness(t, nil)
	r := setupRouter(t, h)
	id := openSession(t, r, paidSoloID)
	base := "/api/v1/bookings/sessions/" + id

	w, env := call(t, r, &student, http.MethodPost, base+"/initiate", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "AWAITING_PAYMENT", string(sess.State))
	assert.True(t, sess.Busy)
	require.NotNil(t, sess.Checkout)
	assert.Equal(t, "order_1", sess.Checkout.OrderID)
	assert.Equal(t, "Keynote - TechFest", sess.Checkout.Description)

	w, _ = call(t, r, &student, http.MethodGet, base+"/receipt", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = call(t, r, &student, http.MethodPost, base+"/payment", PaymentConfirmationRequest{
		RazorpayPaymentID: "pay_1",
		RazorpayOrderID:   "order_1",
		RazorpaySignature: "sig",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "SUCCESS", string(sess.State))
	require.NotNil(t, sess.Booking)

	w, _ = call(t, r, &student, http.MethodGet, base+"/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "RECEIPT_901_")
}

func TestController_PaymentMismatch(t *testing.T) {
	h := newHarness(t, nil)
	r := setupRouter(t, h)
	id := openSession(t, r, paidSoloID)
	base := "/api/v1/bookings/sessions/" + id

	w, _ := call(t, r, &student, http.MethodPost, base+"/payment", PaymentConfirmationRequest{RazorpayPaymentID: "pay_1", RazorpayOrderID: "order_1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = call(t, r, &student, http.MethodPost, base+"/initiate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, &student, http.MethodPost, base+"/payment", map[string]string{"razorpay_order_id": "order_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, &student, http.MethodPost, base+"/payment", PaymentConfirmationRequest{RazorpayPaymentID: "pay_1", RazorpayOrderID: "order_9"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := call(t, r, &student, http.MethodPost, base+"/payment/abandon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "IDLE", string(sess.State))
	require.NotNil(t, sess.Error)
	assert.Equal(t, "PAYMENT_ABANDONED", string(sess.Error.Kind))
}

func TestController_ValidationError(t *testing.T) {
	h := newHarness(t, nil)
	r := setupRouter(t, h)
	id := openSession(t, r, paidGroupID)
	base := "/api/v1/bookings/sessions/" + id

	w, _ := call(t, r, &student, http.MethodPatch, base+"/members/0", UpdateMemberRequest{Field: "name", Value: "Asha"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = call(t, r, &student, http.MethodPatch, base+"/members/0", UpdateMemberRequest{Field: "email", Value: "asha"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = call(t, r, &student, http.MethodPatch, base+"/members/0", UpdateMemberRequest{Field: "phone", Value: "9000000001"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := call(t, r, &student, http.MethodPost, base+"/initiate", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please enter a valid email for team member 1", env.Message)
	var detail ErrorDetail
	require.NoError(t, json.Unmarshal(env.Errors, &detail))
	assert.Equal(t, 1, detail.MemberIndex)
	assert.Equal(t, "email", string(detail.Field))
}

func TestController_RosterRequests(t *testing.T) {
	h := newHarness(t, nil)
	r := setupRouter(t, h)
	id := openSession(t, r, paidGroupID)
	base := "/api/v1/bookings/sessions/" + id

	w, env := call(t, r, &student, http.MethodPut, base+"/group-size", GroupSizeRequest{Size: intPtr(10)})
	require.Equal(t, http.StatusOK, w.Code)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Len(t, sess.Members, 3)

	w, _ = call(t, r, &student, http.MethodPut, base+"/group-size", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, &student, http.MethodPatch, base+"/members/0", UpdateMemberRequest{Field: "age", Value: "20"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, &student, http.MethodDelete, base+"/members/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = call(t, r, &student, http.MethodDelete, base+"/members/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Len(t, sess.Members, 2)

	solo := openSession(t, r, paidSoloID)
	w, _ = call(t, r, &student, http.MethodPost, "/api/v1/bookings/sessions/"+solo+"/members", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_UpstreamErrors(t *testing.T) {
	h := newHarness(t, nil)
	r := setupRouter(t, h)

	h.up.booked = []festapi.Booking{{ID: 1, ProgramID: freeSoloID}}
	w, _ := call(t, r, &student, http.MethodPost, "/api/v1/bookings/sessions", OpenSessionRequest{ProgramID: freeSoloID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = call(t, r, &student, http.MethodPost, "/api/v1/bookings/sessions", OpenSessionRequest{ProgramID: 99})
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := openSession(t, r, paidSoloID)
	h.up.orderErr = &festapi.APIError{StatusCode: http.StatusBadRequest, Message: "Seats are sold out"}
	w, env := call(t, r, &student, http.MethodPost, "/api/v1/bookings/sessions/"+id+"/initiate", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Seats are sold out", env.Message)
}

func TestController_SessionLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	r := setupRouter(t, h)
	id := openSession(t, r, freeSoloID)
	base := "/api/v1/bookings/sessions/" + id

	w, _ := call(t, r, &other, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(t, r, &student, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, &student, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, &student, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := call(t, r, &student, http.MethodGet, "/api/v1/bookings/attempts?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	w, _ = call(t, r, &student, http.MethodGet, "/api/v1/bookings/attempts?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, &student, http.MethodGet, "/api/v1/bookings/mine", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func intPtr(n int) *int { return &n }
