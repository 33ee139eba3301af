package visibility

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanSeeWorld(t *testing.T) {
	tests := []struct {
		name   string
		reader Reader
		msg    Message
		want   bool
	}{
		{"authenticated reader", Reader{UserID: "u1"}, Message{Kind: World}, true},
		{"anonymous reader", Reader{}, Message{Kind: World}, false},
		{"removed message", Reader{UserID: "u1"}, Message{Kind: World, Removed: true}, false},
		{"removed message, admin reader", Reader{UserID: "a1", Admin: true}, Message{Kind: World, Removed: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSee(tt.reader, tt.msg))
		})
	}
}

func TestCanSeePersonal(t *testing.T) {
	msg := Message{Kind: Personal, SenderID: "alice", ReceiverID: "bob"}
	tests := []struct {
		name   string
		reader Reader
		msg    Message
		want   bool
	}{
		{"sender", Reader{UserID: "alice"}, msg, true},
		{"receiver", Reader{UserID: "bob"}, msg, true},
		{"third party", Reader{UserID: "carol"}, msg, false},
		{"admin third party", Reader{UserID: "carol", Admin: true}, msg, false},
		{"removed, sender", Reader{UserID: "alice"}, Message{Kind: Personal, SenderID: "alice", ReceiverID: "bob", Removed: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSee(tt.reader, tt.msg))
		})
	}
}

// Exhaustive table over {removed, public} x {none, pending, approved} x
// {admin, citizen} for protest messages.
func TestCanSeeProtestTruthTable(t *testing.T) {
	memberships := []MembershipState{MembershipNone, MembershipPending, MembershipApproved}
	for _, removed := range []bool{false, true} {
		for _, public := range []bool{false, true} {
			for _, membership := range memberships {
				for _, admin := range []bool{false, true} {
					want := false
					if !removed {
						switch {
						case membership == MembershipApproved:
							want = true
						case admin:
							want = true
						default:
							want = public
						}
					}

					name := fmt.Sprintf("removed=%v public=%v membership=%d admin=%v", removed, public, membership, admin)
					t.Run(name, func(t *testing.T) {
						reader := Reader{UserID: "u1", Admin: admin, Membership: membership}
						msg := Message{Kind: Protest, Removed: removed, Public: public}
						assert.Equal(t, want, CanSee(reader, msg))
					})
				}
			}
		}
	}
}

func TestCanSeeRequiresIdentity(t *testing.T) {
	assert.False(t, CanSee(Reader{}, Message{Kind: Protest, Public: true}))
	assert.False(t, CanSee(Reader{}, Message{Kind: Personal, SenderID: "", ReceiverID: "x"}))
}
