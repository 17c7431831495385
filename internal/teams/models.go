package teams

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a two-person student team. Membership is a pair of fixed
// slots: FirstTeammate always holds the owning member, SecondTeammate is
// filled on join. A team with no members is never persisted — it is deleted
// the moment its last member leaves.
type Team struct {
	ID             uuid.UUID  `db:"id"`
	Name           string     `db:"name"`
	FirstTeammate  uuid.UUID  `db:"first_teammate"`
	SecondTeammate *uuid.UUID `db:"second_teammate"`
	CreatedAt      time.Time  `db:"created_at"`
}

// HasMember reports whether the user occupies one of the team's slots
func (t *Team) HasMember(userID uuid.UUID) bool {
	if t.FirstTeammate == userID {
		return true
	}
	return t.SecondTeammate != nil && *t.SecondTeammate == userID
}

// IsFull reports whether both slots are occupied
func (t *Team) IsFull() bool {
	return t.SecondTeammate != nil
}

// MemberIDs returns the occupied slots in order
func (t *Team) MemberIDs() []uuid.UUID {
	ids := []uuid.UUID{t.FirstTeammate}
	if t.SecondTeammate != nil {
		ids = append(ids, *t.SecondTeammate)
	}
	return ids
}

// AddMember puts the user into the second slot
func (t *Team) AddMember(userID uuid.UUID) error {
	if t.IsFull() {
		return ErrTeamIsFull
	}

	t.SecondTeammate = &userID
	return nil
}

// RemoveMember vacates the user's slot and reports whether the team is now
// empty and must be deleted. When the first teammate leaves a two-person
// team, the second teammate is promoted to the first slot.
func (t *Team) RemoveMember(userID uuid.UUID) (dissolved bool, err error) {
	switch {
	case t.SecondTeammate != nil && *t.SecondTeammate == userID:
		t.SecondTeammate = nil
		return false, nil
	case t.FirstTeammate == userID && t.SecondTeammate != nil:
		t.FirstTeammate = *t.SecondTeammate
		t.SecondTeammate = nil
		return false, nil
	case t.FirstTeammate == userID:
		return true, nil
	default:
		return false, ErrUserNotInTeam
	}
}
