package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"festbook/internal/attempts"
	"festbook/internal/checkout"
	"festbook/internal/programs"
	"festbook/internal/roster"
	"festbook/internal/shared/middleware"
	"festbook/internal/shared/utils/response"
	"festbook/internal/users"
	"festbook/internal/workflow"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	OpenSession(c *gin.Context)
	GetSession(c *gin.Context)
	CloseSession(c *gin.Context)
	SetGroupSize(c *gin.Context)
	AddMember(c *gin.Context)
	RemoveMember(c *gin.Context)
	UpdateMember(c *gin.Context)
	Initiate(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	AbandonPayment(c *gin.Context)
	Reset(c *gin.Context)
	Receipt(c *gin.Context)
	ListAttempts(c *gin.Context)
	MyBookings(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// OpenSession godoc
// @Summary      Open a booking session for a program
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      OpenSessionRequest  true  "Program to book"
// @Success      201      {object}  response.StandardApiResponse{data=SessionResponse}
// @Failure      404      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Router       /bookings/sessions [post]
func (ctrl *controller) OpenSession(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	snap, err := ctrl.service.Open(c.Request.Context(), user, req.ProgramID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Booking session opened", toSessionResponse(snap), nil)
}

// GetSession godoc
// @Summary      Booking session snapshot
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=SessionResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /bookings/sessions/{id} [get]
func (ctrl *controller) GetSession(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	snap, err := ctrl.service.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Booking session retrieved", toSessionResponse(snap), nil)
}

// CloseSession godoc
// @Summary      Close a booking session
// @Tags         bookings
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /bookings/sessions/{id} [delete]
func (ctrl *controller) CloseSession(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	if err := ctrl.service.Close(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Booking session closed", nil, nil)
}

// SetGroupSize godoc
// @Summary      Resize the team roster
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string            true  "Session ID"
// @Param        request  body      GroupSizeRequest  true  "Team size"
// @Success      200      {object}  response.StandardApiResponse{data=SessionResponse}
// @Router       /bookings/sessions/{id}/group-size [put]
func (ctrl *controller) SetGroupSize(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	var req GroupSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	snap, err := ctrl.service.SetGroupSize(c.Request.Context(), user, c.Param("id"), *req.Size)
	ctrl.respondSnapshot(c, snap, err, "Group size updated")
}

// AddMember godoc
// @Summary      Append an empty team member
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=SessionResponse}
// @Router       /bookings/sessions/{id}/members [post]
func (ctrl *controller) AddMember(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	snap, err := ctrl.service.AddMember(c.Request.Context(), user, c.Param("id"))
	ctrl.respondSnapshot(c, snap, err, "Member added")
}

// RemoveMember godoc
// @Summary      Remove a team member
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Session ID"
// @Param        index  path      int     true  "Member index (0-based)"
// @Success      200    {object}  response.StandardApiResponse{data=SessionResponse}
// @Router       /bookings/sessions/{id}/members/{index} [delete]
func (ctrl *controller) RemoveMember(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	index, ok := memberIndex(c)
	if !ok {
		return
	}
	snap, err := ctrl.service.RemoveMember(c.Request.Context(), user, c.Param("id"), index)
	ctrl.respondSnapshot(c, snap, err, "Member removed")
}

// UpdateMember godoc
// @Summary      Edit one field of a team member
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Session ID"
// @Param        index    path      int                  true  "Member index (0-based)"
// @Param        request  body      UpdateMemberRequest  true  "Field and value"
// @Success      200      {object}  response.StandardApiResponse{data=SessionResponse}
// @Router       /bookings/sessions/{id}/members/{index} [patch]
func (ctrl *controller) UpdateMember(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	index, ok := memberIndex(c)
	if !ok {
		return
	}
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	field, _ := roster.ParseField(req.Field)
	snap, err := ctrl.service.UpdateMember(c.Request.Context(), user, c.Param("id"), index, field, req.Value)
	ctrl.respondSnapshot(c, snap, err, "Member updated")
}

// Initiate godoc
// @Summary      Start a booking attempt
// @Description  Free programs are booked before the response. Paid programs answer with checkout options.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=SessionResponse}
// @Failure      403  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Failure      422  {object}  response.StandardApiResponse
// @Failure      502  {object}  response.StandardApiResponse
// @Router       /bookings/sessions/{id}/initiate [post]
func (ctrl *controller) Initiate(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	snap, err := ctrl.service.Initiate(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err, &snap)
		return
	}
	msg := "Awaiting payment"
	if snap.State == workflow.StateSuccess {
		msg = "Booking confirmed"
	}
	response.RespondJSON(c, "success", http.StatusOK, msg, toSessionResponse(snap), nil)
}

// ConfirmPayment godoc
// @Summary      Checkout widget success callback
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Session ID"
// @Param        request  body      PaymentConfirmationRequest  true  "Payment confirmation"
// @Success      201      {object}  response.StandardApiResponse{data=SessionResponse}
// @Failure      400      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Failure      502      {object}  response.StandardApiResponse
// @Router       /bookings/sessions/{id}/payment [post]
func (ctrl *controller) ConfirmPayment(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	var req PaymentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	snap, err := ctrl.service.ConfirmPayment(c.Request.Context(), user, c.Param("id"), checkout.Confirmation{
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		respondError(c, err, &snap)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Booking confirmed", toSessionResponse(snap), nil)
}

// AbandonPayment godoc
// @Summary      Checkout widget dismissed
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=SessionResponse}
// @Router       /bookings/sessions/{id}/payment/abandon [post]
func (ctrl *controller) AbandonPayment(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	snap, err := ctrl.service.AbandonPayment(c.Request.Context(), user, c.Param("id"))
	ctrl.respondSnapshot(c, snap, err, "Payment cancelled")
}

// Reset godoc
// @Summary      Clear the last attempt error
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=SessionResponse}
// @Router       /bookings/sessions/{id}/reset [post]
func (ctrl *controller) Reset(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	snap, err := ctrl.service.Reset(c.Request.Context(), user, c.Param("id"))
	ctrl.respondSnapshot(c, snap, err, "Booking session reset")
}

// Receipt godoc
// @Summary      Download the booking receipt
// @Tags         bookings
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {file}    file
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /bookings/sessions/{id}/receipt [get]
func (ctrl *controller) Receipt(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	pdf, filename, err := ctrl.service.Receipt(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ListAttempts godoc
// @Summary      Attempt history of the current student
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.StandardApiResponse{data=attempts.PaginatedAttempts}
// @Router       /bookings/attempts [get]
func (ctrl *controller) ListAttempts(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	var q attempts.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	page, err := ctrl.service.ListAttempts(c.Request.Context(), user, q)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to load attempts", nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Attempts retrieved successfully", page, nil)
}

// MyBookings godoc
// @Summary      Bookings of the current student
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.StandardApiResponse
// @Failure      502  {object}  response.StandardApiResponse
// @Router       /bookings/mine [get]
func (ctrl *controller) MyBookings(c *gin.Context) {
	user, ok := currentStudent(c)
	if !ok {
		return
	}
	list, err := ctrl.service.MyBookings(c.Request.Context(), user)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadGateway, "Failed to load bookings", nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", list, nil)
}

func (ctrl *controller) respondSnapshot(c *gin.Context, snap workflow.Snapshot, err error, msg string) {
	if err != nil {
		respondError(c, err, &snap)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, msg, toSessionResponse(snap), nil)
}

func currentStudent(c *gin.Context) (users.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return users.User{}, false
	}
	return user, true
}

func memberIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid member index", nil, nil)
		return 0, false
	}
	return index, true
}

// respondError maps session and attempt errors onto HTTP statuses. Attempt
// failures carry their message verbatim so the page can show it as is.
func respondError(c *gin.Context, err error, snap *workflow.Snapshot) {
	var data interface{}
	if snap != nil && snap.ID != "" {
		data = toSessionResponse(*snap)
	}

	var (
		valErr   *workflow.ValidationError
		authErr  *workflow.AuthorizationError
		orderErr *workflow.OrderCreationError
		subErr   *workflow.SubmissionError
	)
	switch {
	case errors.As(err, &valErr):
		response.RespondJSON(c, "error", http.StatusUnprocessableEntity, valErr.Message, data, toErrorDetail(valErr))
	case errors.As(err, &authErr):
		response.RespondJSON(c, "error", http.StatusForbidden, authErr.Error(), data, toErrorDetail(authErr))
	case errors.As(err, &orderErr):
		response.RespondJSON(c, "error", http.StatusBadGateway, orderErr.Message, data, toErrorDetail(orderErr))
	case errors.As(err, &subErr):
		response.RespondJSON(c, "error", http.StatusBadGateway, subErr.Message, data, toErrorDetail(subErr))

	case errors.Is(err, ErrSessionNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, "Booking session not found", nil, nil)
	case errors.Is(err, programs.ErrProgramNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, "Program not found", nil, nil)
	case errors.Is(err, workflow.ErrDisposed):
		response.RespondJSON(c, "error", http.StatusGone, err.Error(), nil, nil)

	case errors.Is(err, ErrPaymentVerification),
		errors.Is(err, workflow.ErrNotGroupBooking):
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), data, nil)

	case errors.Is(err, workflow.ErrAttemptInProgress),
		errors.Is(err, workflow.ErrNotAwaitingPayment),
		errors.Is(err, workflow.ErrOrderMismatch),
		errors.Is(err, workflow.ErrBookingComplete),
		errors.Is(err, ErrAlreadyBooked),
		errors.Is(err, ErrReceiptUnavailable):
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), data, nil)

	default:
		response.RespondJSON(c, "error", http.StatusBadGateway, "Festival backend is unavailable", nil, nil)
	}
}
