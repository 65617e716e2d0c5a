package programs

import (
	"errors"
	"net/http"
	"strconv"

	"festbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetProgram(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetProgram godoc
// @Summary      Program details
// @Tags         programs
// @Produce      json
// @Param        id   path      int  true  "Program ID"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /programs/{id} [get]
func (ctrl *controller) GetProgram(c *gin.Context) {
	programID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || programID <= 0 {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid program ID", nil, nil)
		return
	}

	program, err := ctrl.service.GetProgram(c.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Program not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusBadGateway, "Failed to load program", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Program retrieved successfully", program, nil)
}
