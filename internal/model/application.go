package model

import "time"

// Application categories as stored in the 身分註記 column.  The values
// are the Chinese labels used on the paper form and in every historic
// row, so they are kept verbatim rather than translated.
const (
    CategoryGeneral   = "一般"   // general pool, allocated by lottery
    CategoryPregnant  = "孕婦"   // pregnancy protection, direct slot
    CategoryDisabled  = "身心障礙" // disability protection, direct slot
    CategoryProtected = "保障"   // guaranteed after two unsuccessful draws
    CategoryService   = "公務車"  // service vehicle, administrative use
)

// Application lifecycle states.  An application is written the moment
// the resolver accepts it; when supplementary evidence is still owed it
// sits in PENDING_EVIDENCE until a reviewer approves (COMPLETE) or
// rejects it.  Rejected rows are deleted, the constant exists for the
// review audit trail in responses.
const (
    StatusPendingEvidence = "PENDING_EVIDENCE"
    StatusComplete        = "COMPLETE"
    StatusRejected        = "REJECTED"
)

// Application records one applicant's submission for one allocation
// period.  The (Period, ApplicantID) pair is unique: an applicant can
// hold at most one application per cycle.
//
// Fields:
//  ID              – primary key identifier.
//  Period          – allocation period code, e.g. "11302".
//  ApplicantID     – employee number, stable across periods.
//  Name            – applicant display name.
//  Unit            – organizational unit.
//  Plate           – declared vehicle plate (uppercase, no dash).
//  Contact         – office contact info.
//  Category        – final category decided by the resolver.
//  PlateBound      – whether the plate was already approved for this
//                    applicant when the application was accepted.
//  Status          – lifecycle state (see constants above).
//  SubmissionToken – opaque token identifying this submission in the
//                    evidence-review flow.
//  CreatedAt       – creation timestamp.
type Application struct {
    ID              uint64    `json:"id"`               // applications.id
    Period          string    `json:"period"`           // applications.period
    ApplicantID     string    `json:"applicant_id"`     // applications.applicant_id
    Name            string    `json:"name"`             // applications.name
    Unit            string    `json:"unit"`             // applications.unit
    Plate           string    `json:"plate"`            // applications.plate
    Contact         string    `json:"contact"`          // applications.contact
    Category        string    `json:"category"`         // applications.category
    PlateBound      bool      `json:"plate_bound"`      // applications.plate_bound
    Status          string    `json:"status"`           // applications.status
    SubmissionToken string    `json:"submission_token"` // applications.submission_token
    CreatedAt       time.Time `json:"created_at"`       // applications.created_at
}
