package social

import (
	"Trivium/models/postgres"
	"Trivium/services/store"
	"Trivium/utils"
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

type FriendAction string

const (
	ActionAccept  FriendAction = "accept"
	ActionDecline FriendAction = "decline"
)

// PendingRequest is a friend request waiting on the caller.
type PendingRequest struct {
	ID        string               `json:"id"`
	Requester postgres.UserProfile `json:"requester"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (s *Service) SendFriendRequest(ctx context.Context, requesterUID, recipientUID string) (*postgres.FriendLink, error) {
	requester := utils.CanonicalUID(requesterUID)
	recipient := utils.CanonicalUID(recipientUID)

	if recipient == "" {
		return nil, utils.BadRequest("Recipient ID is required")
	}
	if requester == recipient {
		return nil, utils.BadRequest("You can't friend yourself")
	}

	if _, err := s.profiles.FindProfile(ctx, recipient); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("Recipient not found")
		}
		return nil, utils.Internal("loading recipient", err)
	}

	if _, err := s.friends.FindLinkBetween(ctx, requester, recipient); err == nil {
		return nil, utils.Conflict("Friend request or friendship already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, utils.Internal("checking friend link", err)
	}

	link := &postgres.FriendLink{
		RequesterUID: requester,
		RecipientUID: recipient,
		Status:       postgres.FriendPending,
	}
	if err := s.friends.CreateLink(ctx, link); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("Friend request or friendship already exists")
		}
		return nil, utils.Internal("saving friend request", err)
	}

	log.Printf("[FRIENDS] %s -> %s request %s", requester, recipient, link.ID)
	return link, nil
}

// RespondToRequest lets the recipient accept or decline a pending request.
func (s *Service) RespondToRequest(ctx context.Context, requestID string, uid string, action FriendAction) (*postgres.FriendLink, error) {
	var status postgres.FriendStatus
	switch FriendAction(strings.ToLower(string(action))) {
	case ActionAccept:
		status = postgres.FriendAccepted
	case ActionDecline:
		status = postgres.FriendDeclined
	default:
		return nil, utils.BadRequest(`Invalid action. Use "accept" or "decline".`)
	}

	link, err := s.friends.FindLink(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("Friend request not found")
		}
		return nil, utils.Internal("loading friend request", err)
	}
	if link.RecipientUID != utils.CanonicalUID(uid) {
		return nil, utils.Forbidden("Not authorized to respond to this request")
	}
	if link.Status != postgres.FriendPending {
		return nil, utils.Conflict("Friend request already answered")
	}

	if err := s.friends.UpdateLinkStatus(ctx, link.ID, status); err != nil {
		return nil, utils.Internal("updating friend request", err)
	}
	link.Status = status

	log.Printf("[FRIENDS] request %s %s by %s", link.ID, status, link.RecipientUID)
	return link, nil
}

// ListFriends returns the profiles of everyone with an accepted link to uid.
// Friends without a stored profile are returned with their uid only.
func (s *Service) ListFriends(ctx context.Context, uid string) ([]postgres.UserProfile, error) {
	uid = utils.CanonicalUID(uid)
	links, err := s.friends.ListLinks(ctx, uid, postgres.FriendAccepted)
	if err != nil {
		return nil, utils.Internal("listing friends", err)
	}

	uids := make([]string, 0, len(links))
	for i := range links {
		uids = append(uids, links[i].Other(uid))
	}
	return s.profilesInOrder(ctx, uids)
}

func (s *Service) PendingRequests(ctx context.Context, uid string) ([]PendingRequest, error) {
	links, err := s.friends.ListIncoming(ctx, utils.CanonicalUID(uid), postgres.FriendPending)
	if err != nil {
		return nil, utils.Internal("listing friend requests", err)
	}

	uids := make([]string, 0, len(links))
	for _, link := range links {
		uids = append(uids, link.RequesterUID)
	}
	profiles, err := s.profilesInOrder(ctx, uids)
	if err != nil {
		return nil, err
	}

	out := make([]PendingRequest, len(links))
	for i, link := range links {
		out[i] = PendingRequest{ID: link.ID, Requester: profiles[i], CreatedAt: link.CreatedAt}
	}
	return out, nil
}

func (s *Service) profilesInOrder(ctx context.Context, uids []string) ([]postgres.UserProfile, error) {
	found, err := s.profiles.FindProfiles(ctx, uids)
	if err != nil {
		return nil, utils.Internal("loading profiles", err)
	}
	byUID := make(map[string]postgres.UserProfile, len(found))
	for _, p := range found {
		byUID[p.UID] = p
	}

	out := make([]postgres.UserProfile, len(uids))
	for i, uid := range uids {
		if p, ok := byUID[uid]; ok {
			out[i] = p
		} else {
			out[i] = postgres.UserProfile{UID: uid}
		}
	}
	return out, nil
}
