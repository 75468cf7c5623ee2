package appointment

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinichq/clinic-api/internal/handler"
	"github.com/clinichq/clinic-api/internal/middleware"
	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/service/appointment"
)

const maxUploadSize = 20 << 20 // 20 MiB across one multipart request

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	found, err := h.service.Get(c.Request.Context(), principal, id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var doctorID *uuid.UUID
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		doctorID = &id
	}

	appointments, err := h.service.ListByFilter(c.Request.Context(), doctorID, c.Query("patient_name"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListToday(c *gin.Context) {
	appointments, err := h.service.ListToday(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) MyAppointments(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	appointments, err := h.service.ListForDoctor(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) MarkArrived(c *gin.Context) {
	h.setStatus(c, h.service.MarkArrived)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	h.setStatus(c, h.service.MarkNoShow)
}

func (h *Handler) MarkCancelled(c *gin.Context) {
	h.setStatus(c, h.service.MarkCancelled)
}

func (h *Handler) setStatus(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "status updated"}))
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.Reschedule(c.Request.Context(), id, req.Date); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "appointment rescheduled"}))
}

// AddNotes accepts a multipart form: a "notes" text field plus any number of
// "files" parts. File failures come back in the response body, they never
// fail the request.
func (h *Handler) AddNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	req := model.DoctorNotesRequest{Notes: c.PostForm("notes")}

	form, err := c.MultipartForm()
	if err != nil && err != http.ErrNotMultipart {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid multipart form"))
		return
	}
	if form != nil {
		for _, fh := range form.File["files"] {
			file, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unreadable file: "+fh.Filename))
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unreadable file: "+fh.Filename))
				return
			}
			req.Files = append(req.Files, model.FileUpload{Name: fh.Filename, Data: data})
		}
	}

	principal, _ := middleware.GetPrincipal(c)
	result, err := h.service.AddDoctorNotes(c.Request.Context(), principal, id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) GenerateAISummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	summary, err := h.service.GenerateAISummary(c.Request.Context(), principal, id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"summary": summary}))
}

func (h *Handler) ChatWithAI(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	principal, _ := middleware.GetPrincipal(c)
	reply, err := h.service.ChatWithAI(c.Request.Context(), principal, id, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"reply": reply}))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "appointment deleted"}))
}

func (h *Handler) PaymentStatusList(c *gin.Context) {
	appointments, err := h.service.PaymentStatusList(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}
