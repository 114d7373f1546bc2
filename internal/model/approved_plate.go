package model

import "time"

// ApprovedPlate marks an (applicant, plate) pair whose vehicle evidence
// was accepted once.  Rows are append-only and never deleted; they are
// the sole source for "is this the applicant's first time with this
// vehicle", which exempts repeat applicants from resubmitting papers.
//
// Fields:
//  ID          – primary key identifier.
//  ApplicantID – employee number.
//  Plate       – approved vehicle plate.
//  CreatedAt   – when the approval was recorded.
type ApprovedPlate struct {
    ID          uint64    // approved_plates.id
    ApplicantID string    // approved_plates.applicant_id
    Plate       string    // approved_plates.plate
    CreatedAt   time.Time // approved_plates.created_at
}
