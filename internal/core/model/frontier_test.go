package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontier_DiscoverRespectsCap(t *testing.T) {
	f := NewFrontier("1", 3)

	assert.True(t, f.Discover("2"))
	assert.True(t, f.Discover("3"))
	assert.False(t, f.Discover("4"))
	assert.True(t, f.Discover("2")) // already a key

	assert.Equal(t, 3, f.Len())
	assert.True(t, f.Full())
	assert.Equal(t, []string{"1", "2", "3"}, f.IDs())
}

func TestFrontier_PendingTracksStates(t *testing.T) {
	f := NewFrontier("1", 10)
	f.Discover("2")
	f.Discover("3")

	assert.Equal(t, []string{"1", "2", "3"}, f.Pending())

	f.Resolve("1", &Person{ID: "1"})
	f.Fail("2", errors.New("boom"))
	assert.Equal(t, []string{"3"}, f.Pending())
	assert.True(t, f.HasPending())

	f.Resolve("3", &Person{ID: "3"})
	assert.False(t, f.HasPending())

	counts := f.Count()
	assert.Equal(t, 2, counts[StateResolved])
	assert.Equal(t, 1, counts[StateFailed])
}

func TestFrontier_RedirectFollowsAlias(t *testing.T) {
	f := NewFrontier("1", 10)
	f.Redirect("1", "9")
	f.Resolve("9", &Person{ID: "9", Name: "Nine"})

	assert.Equal(t, "9", f.Canonical("1"))
	p, ok := f.Person("1")
	assert.True(t, ok)
	assert.Equal(t, "Nine", p.Name)
}

func TestFrontier_RedirectCycleTerminates(t *testing.T) {
	f := NewFrontier("1", 10)
	f.Discover("2")
	f.Redirect("1", "2")
	f.Redirect("2", "1")

	_, ok := f.Person("1")
	assert.False(t, ok)
}

func TestFrontier_ResolveWhenFull(t *testing.T) {
	f := NewFrontier("1", 1)
	assert.False(t, f.Resolve("2", &Person{ID: "2"}))
	assert.False(t, f.Has("2"))
}

func TestSnakTargetID(t *testing.T) {
	tests := []struct {
		name string
		snak Snak
		want string
		ok   bool
	}{
		{"numeric id", Snak{DataValue: &DataValue{Value: []byte(`{"entity-type":"item","numeric-id":76}`)}}, "76", true},
		{"string id only", Snak{DataValue: &DataValue{Value: []byte(`{"id":"Q13133"}`)}}, "13133", true},
		{"no value", Snak{SnakType: "novalue"}, "", false},
		{"string value", Snak{DataValue: &DataValue{Value: []byte(`"hello"`)}}, "", false},
		{"empty object", Snak{DataValue: &DataValue{Value: []byte(`{}`)}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.snak.TargetID()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
