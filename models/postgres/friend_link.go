package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendDeclined FriendStatus = "declined"
)

var ErrSelfFriendLink = errors.New("a user cannot befriend themselves")

/*
 * 'FriendLink' is a friend request and, once accepted, the friendship
 * itself. There is at most one link per unordered pair of users.
 */
type FriendLink struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RequesterUID string       `gorm:"size:128;not null;index" json:"requester"`
	RecipientUID string       `gorm:"size:128;not null;index" json:"recipient"`
	// PairKey is the same for A->B and B->A, see FriendPairKey
	PairKey      string       `gorm:"size:257;not null;uniqueIndex:idx_friend_links_pair" json:"-"`
	Status       FriendStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Requester *UserProfile `gorm:"foreignKey:RequesterUID;references:UID" json:"requesterProfile,omitempty"`
	Recipient *UserProfile `gorm:"foreignKey:RecipientUID;references:UID" json:"recipientProfile,omitempty"`
}

func (f *FriendLink) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// GORM hook to ensure both ends of the link are different users and to
// derive the pair key the unique index is on
func (f *FriendLink) BeforeSave(tx *gorm.DB) error {
	if f.RequesterUID == f.RecipientUID {
		return ErrSelfFriendLink
	}
	f.PairKey = FriendPairKey(f.RequesterUID, f.RecipientUID)
	return nil
}

// FriendPairKey identifies the unordered pair {a, b}.
func FriendPairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Other returns the uid on the opposite end of the link from uid.
func (f *FriendLink) Other(uid string) string {
	if f.RequesterUID == uid {
		return f.RecipientUID
	}
	return f.RequesterUID
}
