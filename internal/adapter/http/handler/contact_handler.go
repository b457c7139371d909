package handler

import (
	"time"

	"topup-pro/internal/adapter/http/dto"
	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"
	"topup-pro/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactHandler handles saved beneficiary endpoints.
type ContactHandler struct {
	contactRepo ports.ContactRepository
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactRepo ports.ContactRepository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

// Create handles POST /api/v1/contacts.
func (h *ContactHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	contact := &domain.Contact{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Phone:     req.Phone,
		Network:   req.Network,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.contactRepo.Create(c.Request.Context(), contact); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.Created(c, toContactResponse(contact))
}

// List handles GET /api/v1/contacts.
func (h *ContactHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	contacts, err := h.contactRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, toContactResponse(&contacts[i]))
	}
	response.OK(c, items)
}

// Delete handles DELETE /api/v1/contacts/:id.
func (h *ContactHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid contact id"))
		return
	}

	if err := h.contactRepo.Delete(c.Request.Context(), userID, contactID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func toContactResponse(c *domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Network:   c.Network,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
