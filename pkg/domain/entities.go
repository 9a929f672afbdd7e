// Package domain defines the directory entities, caller inputs, and the
// persistence contracts shared by the havenlist state container.
package domain

import (
	"encoding/json"
	"time"
)

// EntityType identifies the type of record held by the state container.
type EntityType string

// Supported entity type identifiers used in Change records.
const (
	EntityHome     EntityType = "home"
	EntityDonation EntityType = "donation"
	EntityVisit    EntityType = "visit"
	// EntityReview identifies a review embedded in its owning home.
	EntityReview EntityType = "review"
)

// VisitStatus enumerates the scheduling states of a visit request.
type VisitStatus string

// Visit statuses. New visits always start pending.
const (
	VisitPending  VisitStatus = "pending"
	VisitApproved VisitStatus = "approved"
	VisitRejected VisitStatus = "rejected"
)

// Valid reports whether s is one of the known visit statuses.
func (s VisitStatus) Valid() bool {
	switch s {
	case VisitPending, VisitApproved, VisitRejected:
		return true
	}
	return false
}

// DateLayout is the ISO-8601 layout used for generated dates: UTC with
// millisecond precision and a literal Z suffix.
const DateLayout = "2006-01-02T15:04:05.000Z"

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ContactInfo holds the public contact channels of a home.
type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ChildrensHome is a listed organization. DonationCount and VisitCount are
// derived counters maintained incrementally by the container; Reviews are
// owned by the home and have no lifecycle of their own.
type ChildrensHome struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	Description     string      `json:"description"`
	Needs           []string    `json:"needs"`
	Image           string      `json:"image"`
	ContactInfo     ContactInfo `json:"contactInfo"`
	VisitationHours string      `json:"visitationHours"`
	DonationCount   int         `json:"donationCount"`
	VisitCount      int         `json:"visitCount"`
	Reviews         []Review    `json:"reviews"`
}

// Donation records a gift to a home. HomeID is a weak reference and may
// dangle after the home is deleted.
type Donation struct {
	ID         string  `json:"id"`
	HomeID     string  `json:"homeId"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency,omitempty"`
	DonorName  string  `json:"donorName,omitempty"`
	DonorEmail string  `json:"donorEmail,omitempty"`
	Message    string  `json:"message,omitempty"`
	Anonymous  bool    `json:"anonymous,omitempty"`

	// Extra holds stored members this type does not model. They are kept
	// as-is and written back when the donation is encoded.
	Extra map[string]json.RawMessage `json:"-"`
}

// Visit is a scheduled visit request. HomeID is a weak reference.
type Visit struct {
	ID           string      `json:"id"`
	HomeID       string      `json:"homeId"`
	Status       VisitStatus `json:"status"`
	VisitorName  string      `json:"visitorName,omitempty"`
	VisitorEmail string      `json:"visitorEmail,omitempty"`
	VisitorPhone string      `json:"visitorPhone,omitempty"`
	ScheduledFor string      `json:"scheduledFor,omitempty"`
	GroupSize    int         `json:"groupSize,omitempty"`
	Purpose      string      `json:"purpose,omitempty"`

	// Extra holds stored members this type does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// Review is a visitor's rating of a home, embedded in the home's Reviews.
type Review struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	ReviewerName string `json:"reviewerName,omitempty"`
}

// HomeFields carries the descriptive fields accepted by AddHome. Identity,
// counters and reviews are always assigned by the container.
type HomeFields struct {
	Name            string
	Location        string
	Description     string
	Needs           []string
	Image           string
	ContactInfo     ContactInfo
	VisitationHours string
}

// HomePatch is a shallow partial update. Nil fields are left untouched.
type HomePatch struct {
	Name            *string
	Location        *string
	Description     *string
	Needs           *[]string
	Image           *string
	ContactInfo     *ContactInfo
	VisitationHours *string
	DonationCount   *int
	VisitCount      *int
	Reviews         *[]Review
}

// Apply merges the non-nil fields of p onto h. The id is never touched.
func (p HomePatch) Apply(h *ChildrensHome) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Location != nil {
		h.Location = *p.Location
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Needs != nil {
		h.Needs = append([]string(nil), (*p.Needs)...)
	}
	if p.Image != nil {
		h.Image = *p.Image
	}
	if p.ContactInfo != nil {
		h.ContactInfo = *p.ContactInfo
	}
	if p.VisitationHours != nil {
		h.VisitationHours = *p.VisitationHours
	}
	if p.DonationCount != nil {
		h.DonationCount = *p.DonationCount
	}
	if p.VisitCount != nil {
		h.VisitCount = *p.VisitCount
	}
	if p.Reviews != nil {
		h.Reviews = append([]Review(nil), (*p.Reviews)...)
	}
}

// DonationFields carries the caller-supplied part of a donation.
type DonationFields struct {
	HomeID     string
	Amount     float64
	Currency   string
	DonorName  string
	DonorEmail string
	Message    string
	Anonymous  bool
}

// VisitFields carries the caller-supplied part of a visit request.
type VisitFields struct {
	HomeID       string
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	ScheduledFor string
	GroupSize    int
	Purpose      string
}

// ReviewFields carries the caller-supplied part of a review.
type ReviewFields struct {
	Rating       int
	Comment      string
	ReviewerName string
}

// Change describes a mutation committed by the container.
type Change struct {
	Entity EntityType
	Action Action
	ID     string
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
