package notification

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// EmailRequest contains all the data needed to send a dataset-ready notification
type EmailRequest struct {
	To          []Recipient // Primary recipients
	CC          []Recipient // Carbon copy recipients
	DatasetName string      // Name of the curated dataset
	Episodes    int         // Number of episodes in the output
	Frames      int         // Number of frames in the output
	Tasks       int         // Number of distinct tasks
	ArchiveURL  string      // Google Drive URL for the dataset archive
	SenderName  string      // Name to sign the email
}

// Validate checks that the email request has all required fields
func (r *EmailRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range r.To {
		if to.Address == "" {
			return ErrInvalidRecipient
		}
	}
	if r.DatasetName == "" {
		return ErrNoDatasetName
	}
	if r.ArchiveURL == "" {
		return ErrNoArchiveURL
	}
	return nil
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(req *EmailRequest) error
}
