package notification

import (
	"robot-dataset-curator/domain/notification"
)

// Service handles email notification operations
type Service struct {
	sender     notification.EmailSender
	senderName string
}

// NewService creates a new notification service
func NewService(sender notification.EmailSender, senderName string) *Service {
	return &Service{
		sender:     sender,
		senderName: senderName,
	}
}

// SendRequest contains the parameters for announcing a curated dataset
type SendRequest struct {
	To          []notification.Recipient
	CC          []notification.Recipient
	DatasetName string
	Episodes    int
	Frames      int
	Tasks       int
	ArchiveURL  string
}

// Send sends a dataset-ready notification email
func (s *Service) Send(req SendRequest) error {
	emailReq := &notification.EmailRequest{
		To:          req.To,
		CC:          req.CC,
		DatasetName: req.DatasetName,
		Episodes:    req.Episodes,
		Frames:      req.Frames,
		Tasks:       req.Tasks,
		ArchiveURL:  req.ArchiveURL,
		SenderName:  s.senderName,
	}

	return s.sender.Send(emailReq)
}
