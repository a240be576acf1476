package service

import "github.com/google/uuid"

// QRCodeService generates QR codes for invitation links.
type QRCodeService interface {
	// GenerateInvitationQR renders a PNG QR code encoding the invitation
	// acceptance payload.
	GenerateInvitationQR(invitationID uuid.UUID) ([]byte, error)

	// ParseInvitationQR extracts the invitation ID from scanned QR data.
	ParseInvitationQR(qrData string) (uuid.UUID, error)
}
