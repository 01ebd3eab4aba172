// Package profile defines the applicant data model and its persistence.
package profile

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an application profile.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSubmitted     Status = "SUBMITTED"
	StatusApproved      Status = "APPROVED"
	StatusDenied        Status = "DENIED"
	StatusPendingReview Status = "PENDING_REVIEW"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusDenied, StatusPendingReview:
		return true
	}
	return false
}

// Address is a postal address as it appears on the form.
type Address struct {
	InCareOf string `json:"inCareOf,omitempty"`
	Street   string `json:"street,omitempty"`
	AptType  string `json:"aptType,omitempty"` // "Apt", "Ste" or "Flr"
	AptNum   string `json:"aptNum,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
}

// OtherName is an additional name the applicant has used.
type OtherName struct {
	FamilyName string `json:"familyName,omitempty"`
	GivenName  string `json:"givenName,omitempty"`
	MiddleName string `json:"middleName,omitempty"`
}

// PersonalInfo holds identity and contact data.
type PersonalInfo struct {
	FamilyName            string      `json:"familyName,omitempty"`
	GivenName             string      `json:"givenName,omitempty"`
	MiddleName            string      `json:"middleName,omitempty"`
	OtherNames            []OtherName `json:"otherNames,omitempty"`
	DateOfBirth           string      `json:"dateOfBirth,omitempty"` // ISO YYYY-MM-DD
	Gender                string      `json:"gender,omitempty"`
	MaritalStatus         string      `json:"maritalStatus,omitempty"`
	CityOfBirth           string      `json:"cityOfBirth,omitempty"`
	CountryOfBirth        string      `json:"countryOfBirth,omitempty"`
	CountryOfCitizenship  string      `json:"countryOfCitizenship,omitempty"`
	SSN                   string      `json:"ssn,omitempty"`
	Phone                 string      `json:"phone,omitempty"`
	Email                 string      `json:"email,omitempty"`
	MailingAddress        Address     `json:"mailingAddress"`
	PhysicalAddress       Address     `json:"physicalAddress"`
	PhysicalSameAsMailing bool        `json:"physicalSameAsMailing"`
}

// ImmigrationDetails holds arrival and status data.
type ImmigrationDetails struct {
	AlienNumber          string `json:"alienNumber,omitempty"`
	USCISAccountNumber   string `json:"uscisAccountNumber,omitempty"`
	I94Number            string `json:"i94Number,omitempty"`
	PassportNumber       string `json:"passportNumber,omitempty"`
	TravelDocNumber      string `json:"travelDocNumber,omitempty"`
	PassportCountry      string `json:"passportCountry,omitempty"`
	PassportExpiration   string `json:"passportExpiration,omitempty"` // ISO YYYY-MM-DD
	LastArrivalDate      string `json:"lastArrivalDate,omitempty"`    // ISO YYYY-MM-DD
	PlaceOfLastArrival   string `json:"placeOfLastArrival,omitempty"`
	StatusAtLastArrival  string `json:"statusAtLastArrival,omitempty"`
	CurrentStatus        string `json:"currentStatus,omitempty"`
	StatusExpirationDate string `json:"statusExpirationDate,omitempty"` // ISO YYYY-MM-DD
	SevisNumber          string `json:"sevisNumber,omitempty"`
	PreviouslyFiledEAD   bool   `json:"previouslyFiledEAD"`
	HasGreenCard         bool   `json:"hasGreenCard"`
	GrantedParole        bool   `json:"grantedParole"`
	AsylumPending        bool   `json:"asylumPending"`
}

// EligibilityInfo holds the filing category and its supporting data.
type EligibilityInfo struct {
	ApplicationReason       string `json:"applicationReason,omitempty"`   // "initial", "renewal" or "replacement"
	EligibilityCategory     string `json:"eligibilityCategory,omitempty"` // e.g. "(c)(3)(B)"
	CategoryDescription     string `json:"categoryDescription,omitempty"`
	StemDegree              string `json:"stemDegree,omitempty"`
	EverifyEmployerName     string `json:"everifyEmployerName,omitempty"`
	EverifyIDNumber         string `json:"everifyIDNumber,omitempty"`
	PriorApplicationReceipt string `json:"priorApplicationReceipt,omitempty"`
	PriorApplicationDenied  bool   `json:"priorApplicationDenied"`
}

// EmploymentInfo holds current employment data.
type EmploymentInfo struct {
	CurrentEmployer string `json:"currentEmployer,omitempty"`
	JobTitle        string `json:"jobTitle,omitempty"`
	StartDate       string `json:"startDate,omitempty"` // ISO YYYY-MM-DD
	AnnualIncome    string `json:"annualIncome,omitempty"`
}

// PaymentInfo holds filing fee data.
type PaymentInfo struct {
	FeeAmount          string `json:"feeAmount,omitempty"`
	PaymentMethod      string `json:"paymentMethod,omitempty"`
	CardholderName     string `json:"cardholderName,omitempty"`
	FeeWaiverRequested bool   `json:"feeWaiverRequested"`
}

// DocumentRef is a handle to a supporting document. Content is never stored
// in the profile, only references.
type DocumentRef struct {
	Type       string `json:"type,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Reference  string `json:"reference,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

// Metadata carries identity, versioning and audit state for a profile.
type Metadata struct {
	ID        string   `json:"id"`
	Version   int      `json:"version"`
	Status    Status   `json:"status"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Notes     []string `json:"notes,omitempty"`
}

// ApplicantProfile is the canonical nested record all other components
// consume. Every leaf is a string, bool or number; supporting documents are
// reference handles only.
type ApplicantProfile struct {
	PersonalInfo        PersonalInfo       `json:"personalInfo"`
	ImmigrationDetails  ImmigrationDetails `json:"immigrationDetails"`
	EligibilityInfo     EligibilityInfo    `json:"eligibilityInfo"`
	EmploymentInfo      EmploymentInfo     `json:"employmentInfo"`
	PaymentInfo         PaymentInfo        `json:"paymentInfo"`
	SupportingDocuments []DocumentRef      `json:"supportingDocuments,omitempty"`
	Metadata            Metadata           `json:"metadata"`
}

// New creates an empty profile with a generated id in DRAFT state.
func New() *ApplicantProfile {
	now := time.Now().UTC().Format(time.RFC3339)
	return &ApplicantProfile{
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Version:   0,
			Status:    StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Touch refreshes the profile's updatedAt timestamp.
func (p *ApplicantProfile) Touch() {
	p.Metadata.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// AddNote appends an audit note.
func (p *ApplicantProfile) AddNote(note string) {
	p.Metadata.Notes = append(p.Metadata.Notes, note)
}
