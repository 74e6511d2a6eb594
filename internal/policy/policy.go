package policy

import "github.com/google/uuid"

// Owned is any resource with a single owning user. Posts, comments,
// stories, events and announcements all satisfy it.
type Owned interface {
	OwnerID() uuid.UUID
}

// OwnsResource is the one ownership gate every mutating handler goes
// through: the authenticated principal must be the resource owner.
func OwnsResource(principal uuid.UUID, resource Owned) bool {
	return principal != uuid.Nil && principal == resource.OwnerID()
}

// CanModerate extends OwnsResource for resources with a secondary
// authority, e.g. a post author may remove comments under their post.
func CanModerate(principal uuid.UUID, resource Owned, moderator uuid.UUID) bool {
	return OwnsResource(principal, resource) || (principal != uuid.Nil && principal == moderator)
}
