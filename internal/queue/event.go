// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationEvent is published whenever the resolver or the review
// flow produces an applicant-facing notice. It carries the fully
// rendered mail so the consumer can deliver it without querying the
// primary database.
type NotificationEvent struct {
    ApplicantID string `json:"applicant_id"`
    Name        string `json:"name"`
    Email       string `json:"email"`
    Subject     string `json:"subject"`
    Body        string `json:"body"`
    QueuedAt    string `json:"queued_at"`
}
