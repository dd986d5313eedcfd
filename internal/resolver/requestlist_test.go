package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestListInsertNewKey(t *testing.T) {
	rl := NewRequestList(10)
	reply := make(chan wireResult, 1)

	isNew := rl.Insert("hash1", "uid1", reply)

	assert.True(t, isNew, "first waiter for a hash must be reported as new")
	assert.Equal(t, 1, rl.Len())
}

func TestRequestListInsertDuplicateKey(t *testing.T) {
	rl := NewRequestList(10)
	reply1 := make(chan wireResult, 1)
	reply2 := make(chan wireResult, 1)

	isNew1 := rl.Insert("hash1", "uid1", reply1)
	isNew2 := rl.Insert("hash1", "uid2", reply2)

	assert.True(t, isNew1)
	assert.False(t, isNew2, "second waiter for the same hash must be reported as a duplicate")
	assert.Equal(t, 1, rl.Len(), "a duplicate must not grow the distinct-key count")
}

func TestRequestListRemoveSingleWaiterByUID(t *testing.T) {
	rl := NewRequestList(10)
	reply1 := make(chan wireResult, 1)
	reply2 := make(chan wireResult, 1)
	rl.Insert("hash1", "uid1", reply1)
	rl.Insert("hash1", "uid2", reply2)

	uid1 := "uid1"
	removed := rl.Remove("hash1", &uid1)

	require.Len(t, removed, 1)
	assert.Equal(t, 1, rl.Len(), "removing one of two waiters must not drop the key")
}

func TestRequestListRemoveLastWaiterByUIDDropsKey(t *testing.T) {
	rl := NewRequestList(10)
	reply := make(chan wireResult, 1)
	rl.Insert("hash1", "uid1", reply)

	uid1 := "uid1"
	removed := rl.Remove("hash1", &uid1)

	require.Len(t, removed, 1)
	assert.Equal(t, 0, rl.Len())
	assert.False(t, rl.IsFull())
}

func TestRequestListRemoveAllWaiters(t *testing.T) {
	rl := NewRequestList(10)
	reply1 := make(chan wireResult, 1)
	reply2 := make(chan wireResult, 1)
	rl.Insert("hash1", "uid1", reply1)
	rl.Insert("hash1", "uid2", reply2)

	removed := rl.Remove("hash1", nil)

	require.Len(t, removed, 2, "removing with a nil uid must fan out every waiter")
	assert.Equal(t, 0, rl.Len())
}

func TestRequestListRemoveUnknownHashReturnsNil(t *testing.T) {
	rl := NewRequestList(10)
	assert.Nil(t, rl.Remove("missing", nil))

	uid := "uid1"
	assert.Nil(t, rl.Remove("missing", &uid))
}

func TestRequestListRemoveUnknownUIDReturnsNil(t *testing.T) {
	rl := NewRequestList(10)
	reply := make(chan wireResult, 1)
	rl.Insert("hash1", "uid1", reply)

	other := "uid-does-not-exist"
	removed := rl.Remove("hash1", &other)

	assert.Nil(t, removed)
	assert.Equal(t, 1, rl.Len(), "a miss on uid must not disturb the existing waiter")
}

func TestRequestListIsFull(t *testing.T) {
	rl := NewRequestList(2)
	reply := make(chan wireResult, 1)

	rl.Insert("hash1", "uid1", reply)
	assert.False(t, rl.IsFull())

	rl.Insert("hash2", "uid2", reply)
	assert.False(t, rl.IsFull(), "totalCount equal to the limit is not yet full")

	rl.Insert("hash3", "uid3", reply)
	assert.True(t, rl.IsFull(), "totalCount strictly greater than the limit is full")
}

func TestRequestListFullResetsOnAnyRemoval(t *testing.T) {
	rl := NewRequestList(1)
	reply := make(chan wireResult, 1)

	rl.Insert("hash1", "uid1", reply)
	rl.Insert("hash2", "uid2", reply)
	require.True(t, rl.IsFull())

	rl.Remove("hash1", nil)
	assert.False(t, rl.IsFull(), "removing any single key clears full immediately")
}
