package model

import "errors"

// FollowListResponse enumerates one side of the follow graph.
type FollowListResponse struct {
	Users []UserSummary `json:"users"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
