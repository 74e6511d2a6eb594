package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type ownedResource struct {
	owner uuid.UUID
}

func (r ownedResource) OwnerID() uuid.UUID {
	return r.owner
}

func TestOwnsResource(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	resource := ownedResource{owner: owner}

	assert.True(t, OwnsResource(owner, resource))
	assert.False(t, OwnsResource(other, resource))
	assert.False(t, OwnsResource(uuid.Nil, resource))
}

func TestOwnsResourceNilOwner(t *testing.T) {
	// A resource with no owner must not be claimable via the zero UUID.
	resource := ownedResource{owner: uuid.Nil}
	assert.False(t, OwnsResource(uuid.Nil, resource))
}

func TestCanModerate(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	other := uuid.New()
	resource := ownedResource{owner: owner}

	assert.True(t, CanModerate(owner, resource, moderator))
	assert.True(t, CanModerate(moderator, resource, moderator))
	assert.False(t, CanModerate(other, resource, moderator))
	assert.False(t, CanModerate(uuid.Nil, resource, uuid.Nil))
}
