/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import "fmt"

// State is the lifecycle state of an exchange. The numeric values are kept in serialized exchanges.
type State int32

// Exchange states.
const (
	// None is reported for references which were never created.
	None State = iota
	// Initialized exchange, no offer sent.
	Initialized
	// OfferSent to the holder, waiting for a request.
	OfferSent
	// RequestReceived from the holder, the credential can be sent.
	RequestReceived
	// Accepted credential, the exchange is complete.
	Accepted
	// Unfulfilled exchange, the holder reported a problem.
	Unfulfilled
	// CredentialSent to a holder asked to acknowledge it.
	CredentialSent
)

const (
	stateNameNone            = "none"
	stateNameInitialized     = "initialized"
	stateNameOfferSent       = "offer-sent"
	stateNameRequestReceived = "request-received"
	stateNameAccepted        = "accepted"
	stateNameUnfulfilled     = "unfulfilled"
	stateNameCredentialSent  = "credential-sent"
)

// String returns the state name.
func (s State) String() string {
	st, err := stateFromValue(s)
	if err != nil {
		return fmt.Sprintf("unknown(%d)", int32(s))
	}

	return st.Name()
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Accepted || s == Unfulfilled
}

// the protocol's state.
type state interface {
	// Name of this state.
	Name() string
	// Value of this state.
	Value() State
	// Whether this state allows transitioning into the next state.
	CanTransitionTo(next state) bool
}

// none state
type none struct{}

func (s *none) Name() string {
	return stateNameNone
}

func (s *none) Value() State {
	return None
}

func (s *none) CanTransitionTo(next state) bool {
	return next.Name() == stateNameInitialized
}

// initialized state
type initialized struct{}

func (s *initialized) Name() string {
	return stateNameInitialized
}

func (s *initialized) Value() State {
	return Initialized
}

func (s *initialized) CanTransitionTo(next state) bool {
	return next.Name() == stateNameOfferSent || next.Name() == stateNameUnfulfilled
}

// offerSent state
type offerSent struct{}

func (s *offerSent) Name() string {
	return stateNameOfferSent
}

func (s *offerSent) Value() State {
	return OfferSent
}

func (s *offerSent) CanTransitionTo(next state) bool {
	return next.Name() == stateNameRequestReceived || next.Name() == stateNameUnfulfilled
}

// requestReceived state
type requestReceived struct{}

func (s *requestReceived) Name() string {
	return stateNameRequestReceived
}

func (s *requestReceived) Value() State {
	return RequestReceived
}

func (s *requestReceived) CanTransitionTo(next state) bool {
	return next.Name() == stateNameAccepted ||
		next.Name() == stateNameCredentialSent ||
		next.Name() == stateNameUnfulfilled
}

// credentialSent state
type credentialSent struct{}

func (s *credentialSent) Name() string {
	return stateNameCredentialSent
}

func (s *credentialSent) Value() State {
	return CredentialSent
}

func (s *credentialSent) CanTransitionTo(next state) bool {
	return next.Name() == stateNameAccepted || next.Name() == stateNameUnfulfilled
}

// accepted state
type accepted struct{}

func (s *accepted) Name() string {
	return stateNameAccepted
}

func (s *accepted) Value() State {
	return Accepted
}

func (s *accepted) CanTransitionTo(_ state) bool {
	return false
}

// unfulfilled state
type unfulfilled struct{}

func (s *unfulfilled) Name() string {
	return stateNameUnfulfilled
}

func (s *unfulfilled) Value() State {
	return Unfulfilled
}

func (s *unfulfilled) CanTransitionTo(_ state) bool {
	return false
}

// stateFromValue returns the state by given value.
func stateFromValue(v State) (state, error) {
	switch v {
	case None:
		return &none{}, nil
	case Initialized:
		return &initialized{}, nil
	case OfferSent:
		return &offerSent{}, nil
	case RequestReceived:
		return &requestReceived{}, nil
	case Accepted:
		return &accepted{}, nil
	case Unfulfilled:
		return &unfulfilled{}, nil
	case CredentialSent:
		return &credentialSent{}, nil
	default:
		return nil, fmt.Errorf("invalid state value: %d", int32(v))
	}
}

// StateFromName returns the state with the given name.
func StateFromName(name string) (State, error) {
	for v := None; v <= CredentialSent; v++ {
		if v.String() == name {
			return v, nil
		}
	}

	return None, fmt.Errorf("invalid state name: %s", name)
}
