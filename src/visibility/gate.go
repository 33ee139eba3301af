// Package visibility holds the one authoritative read-access policy for
// chat content. Every list path filters through CanSee; no handler
// re-implements these rules in query predicates.
package visibility

type ChannelKind int

const (
	World ChannelKind = iota
	Protest
	Personal
)

type MembershipState int

const (
	// MembershipNone: reader has no membership row for the protest.
	MembershipNone MembershipState = iota
	// MembershipPending: joined but not yet approved.
	MembershipPending
	// MembershipApproved: full member.
	MembershipApproved
)

// Message is the channel-agnostic view of a stored message.
type Message struct {
	Kind       ChannelKind
	Removed    bool
	Public     bool   // protest only
	SenderID   string // personal only
	ReceiverID string // personal only
}

// Reader describes who is asking. Membership is the reader's state for the
// protest the message belongs to; ignored for other kinds.
type Reader struct {
	UserID     string
	Admin      bool
	Membership MembershipState
}

// CanSee evaluates the rules in order, first match wins:
//
//  1. removed messages are invisible to everyone here (admin audit views
//     live elsewhere)
//  2. world: any authenticated reader
//  3. personal: sender or receiver only
//  4. protest: approved members see everything, others only public
//  5. a global admin bypasses rule 4, never rule 1
func CanSee(r Reader, m Message) bool {
	if m.Removed {
		return false
	}
	if r.UserID == "" {
		return false
	}
	switch m.Kind {
	case World:
		return true
	case Personal:
		return r.UserID == m.SenderID || r.UserID == m.ReceiverID
	case Protest:
		if r.Membership == MembershipApproved {
			return true
		}
		if r.Admin {
			return true
		}
		return m.Public
	}
	return false
}
