package model

import "time"

// Payment states as stored in the 繳費狀態 column.  Transitions are
// driven by administrative action, never by the resolver.
const (
    PaymentUnpaid      = "未繳費"
    PaymentPaid        = "已繳費"
    PaymentForfeited   = "放棄"
    PaymentTransferred = "轉讓"
)

// WaitlistPrefix is the sentinel written into SpaceID for waitlisted
// lottery participants, followed by the 1-based waitlist position
// ("備取1", "備取2", ...).
const WaitlistPrefix = "備取"

// LotteryEntry marks an applicant's membership in the paid pool for a
// period, either through the lottery or through a direct guaranteed
// assignment.  SpaceID holds a real space identifier for assigned
// participants and a 備取N placeholder for waitlisted ones.
//
// Fields:
//  ID            – primary key identifier.
//  Period        – allocation period code.
//  ApplicantID   – employee number.
//  SpaceID       – assigned space or waitlist placeholder.
//  PaymentStatus – one of the payment constants above.
//  InvoiceNo     – invoice number once billed (nullable).
//  CreatedAt     – creation timestamp.
type LotteryEntry struct {
    ID            uint64    `json:"id"`                   // lottery_entries.id
    Period        string    `json:"period"`               // lottery_entries.period
    ApplicantID   string    `json:"applicant_id"`         // lottery_entries.applicant_id
    SpaceID       string    `json:"space_id"`             // lottery_entries.space_id
    PaymentStatus string    `json:"payment_status"`       // lottery_entries.payment_status
    InvoiceNo     *string   `json:"invoice_no,omitempty"` // lottery_entries.invoice_no (nullable)
    CreatedAt     time.Time `json:"created_at"`           // lottery_entries.created_at
}
