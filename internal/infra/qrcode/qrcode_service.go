package qrcode

import (
	"encoding/json"
	"fmt"

	"bizhub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// QRCodeData represents the QR code data structure
type QRCodeData struct {
	InvitationID string `json:"invitation_id"`
	Type         string `json:"type"`
}

// qrTypeInvitation tags invitation QR payloads so foreign codes are rejected.
const qrTypeInvitation = "business_invitation"

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateInvitationQR generates a QR code for a business invitation
func (s *qrcodeService) GenerateInvitationQR(invitationID uuid.UUID) ([]byte, error) {
	// Create QR code data
	data := QRCodeData{
		InvitationID: invitationID.String(),
		Type:         qrTypeInvitation,
	}

	// Convert to JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	// Generate QR code
	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// Generate PNG image
	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseInvitationQR parses QR code data and returns the invitation ID
func (s *qrcodeService) ParseInvitationQR(qrData string) (uuid.UUID, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	// Validate type
	if data.Type != qrTypeInvitation {
		return uuid.Nil, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	// Parse UUID
	invitationID, err := uuid.Parse(data.InvitationID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse invitation ID: %w", err)
	}

	return invitationID, nil
}
