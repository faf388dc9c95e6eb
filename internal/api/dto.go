package api

import (
	"github.com/starford/esurat/internal/agenda"
	"github.com/starford/esurat/internal/models"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" example:"admin" validate:"required"`
	Password string `json:"password" example:"123"`
}

// LetterListResponse wraps letter listings.
type LetterListResponse struct {
	Letters []models.Letter `json:"letters" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// InstructionRequest sets the disposition instruction.
type InstructionRequest struct {
	Instruction string `json:"instruction" example:"Segera ditindaklanjuti"`
}

// RecipientRequest adds a disposition recipient.
type RecipientRequest struct {
	Recipient string `json:"recipient" example:"Kasi Pemerintahan" validate:"required"`
}

// StatusRequest changes an assignment status.
type StatusRequest struct {
	Status models.AssignmentStatus `json:"status" example:"Proses" validate:"required"`
}

// AnalysisRequest carries the description to analyze, and the result.
type AnalysisRequest struct {
	Description string `json:"description" validate:"required"`
}

// AgendaRequest is the body for creating or updating an agenda.
type AgendaRequest struct {
	Date      string              `json:"date" example:"2026-01-23" validate:"required"`
	SignedBy  string              `json:"signedBy,omitempty"`
	SignedNIP string              `json:"signedNip,omitempty"`
	Items     []models.AgendaItem `json:"items,omitempty"`
}

// applySigner overrides the draft's signer when the request names one.
func (r AgendaRequest) applySigner(d *agenda.Draft) {
	if r.SignedBy == "" && r.SignedNIP == "" {
		return
	}
	cur := d.Agenda()
	s := agenda.Signer{Name: cur.SignedBy, NIP: cur.SignedNIP}
	if r.SignedBy != "" {
		s.Name = r.SignedBy
	}
	if r.SignedNIP != "" {
		s.NIP = r.SignedNIP
	}
	d.SetSigner(s)
}

// AgendaItemRequest is an agenda item with an optional insert position.
type AgendaItemRequest struct {
	models.AgendaItem
	Position *int `json:"position,omitempty"`
}

// DayDateResponse is the formatted agenda heading.
type DayDateResponse struct {
	DayDate string `json:"dayDate" example:"Jum'at/ 23 Januari 2026"`
}

// AttachmentUploadResponse is returned after a successful upload.
type AttachmentUploadResponse struct {
	Name      string `json:"name" example:"3f2a9c.pdf" validate:"required"`
	MediaType string `json:"mediaType" example:"application/pdf" validate:"required"`
	Size      int64  `json:"size" example:"12345" validate:"required"`
	URL       string `json:"url" example:"/attachments/3f2a9c.pdf" validate:"required"`
}
