package domain

import (
	"errors"
	"strconv"
)

// ParticipantKind discriminates the two kinds of account that can log in and message.
type ParticipantKind string

const (
	KindUser     ParticipantKind = "user"
	KindEmployee ParticipantKind = "employee"
)

// ErrInvalidParticipantKind is returned when a kind is neither user nor employee.
var ErrInvalidParticipantKind = errors.New("participant type must be user or employee")

// ParseParticipantKind validates a kind coming from a request.
func ParseParticipantKind(s string) (ParticipantKind, error) {
	switch ParticipantKind(s) {
	case KindUser, KindEmployee:
		return ParticipantKind(s), nil
	}
	return "", ErrInvalidParticipantKind
}

// Participant references a user or an employee by kind and primary key.
type Participant struct {
	Kind ParticipantKind `json:"type"` // user or employee
	ID   uint            `json:"id"`   // Primary key in the kind's table
}

// UserParticipant is a shorthand for a user reference.
func UserParticipant(id uint) Participant { return Participant{Kind: KindUser, ID: id} }

// EmployeeParticipant is a shorthand for an employee reference.
func EmployeeParticipant(id uint) Participant { return Participant{Kind: KindEmployee, ID: id} }

func (p Participant) String() string { return string(p.Kind) + ":" + strconv.FormatUint(uint64(p.ID), 10) }

// Less orders participants by kind, then id.
func (p Participant) Less(o Participant) bool {
	if p.Kind != o.Kind {
		return p.Kind < o.Kind
	}
	return p.ID < o.ID
}

// OrderedPair returns the two participants in canonical storage order.
func OrderedPair(a, b Participant) (Participant, Participant) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}
