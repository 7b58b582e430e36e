package config

import (
	"fmt"
	"strings"

	"robot-dataset-curator/domain/notification"
)

// RecipientLookup provides methods to find recipients in the config
type RecipientLookup struct {
	config *Config
}

// NewRecipientLookup creates a new recipient lookup from config
func NewRecipientLookup(cfg *Config) *RecipientLookup {
	return &RecipientLookup{config: cfg}
}

// LookupRecipient finds recipients matching the query (first name, last name, full name, or key)
// Returns all matches - caller should handle ambiguity
func (r *RecipientLookup) LookupRecipient(query string) ([]notification.Recipient, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, ErrRecipientNotFound
	}

	var matches []notification.Recipient

	for key, rc := range r.config.Email.Recipients {
		keyLower := strings.ToLower(key)
		nameLower := strings.ToLower(rc.Name)
		nameParts := strings.Fields(nameLower)

		var firstName, lastName string
		if len(nameParts) > 0 {
			firstName = nameParts[0]
		}
		if len(nameParts) > 1 {
			lastName = nameParts[len(nameParts)-1]
		}

		// Match on: key, first name, last name, or full name
		if keyLower == query || firstName == query || lastName == query || nameLower == query {
			matches = append(matches, notification.Recipient{
				Name:    rc.Name,
				Address: rc.Address,
			})
		}
	}

	if len(matches) == 0 {
		return nil, ErrRecipientNotFound
	}

	return matches, nil
}

// LookupRecipients looks up multiple recipients by query strings
// Supports comma-separated or multiple queries
func (r *RecipientLookup) LookupRecipients(queries []string) ([]notification.Recipient, error) {
	var allRecipients []notification.Recipient
	seen := make(map[string]bool) // Deduplicate by email

	for _, q := range queries {
		// Handle comma-separated values
		for _, query := range strings.Split(q, ",") {
			query = strings.TrimSpace(query)
			if query == "" {
				continue
			}

			matches, err := r.LookupRecipient(query)
			if err != nil {
				return nil, fmt.Errorf("recipient %q: %w", query, err)
			}

			for _, match := range matches {
				if !seen[match.Address] {
					seen[match.Address] = true
					allRecipients = append(allRecipients, match)
				}
			}
		}
	}

	if len(allRecipients) == 0 {
		return nil, ErrRecipientNotFound
	}

	return allRecipients, nil
}

// DefaultCC returns the configured default CC recipients
func (r *RecipientLookup) DefaultCC() []notification.Recipient {
	cc := make([]notification.Recipient, 0, len(r.config.Email.DefaultCC))
	for _, rc := range r.config.Email.DefaultCC {
		cc = append(cc, notification.Recipient{Name: rc.Name, Address: rc.Address})
	}
	return cc
}
