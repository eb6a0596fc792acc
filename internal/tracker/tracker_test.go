package tracker

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/markthomas93/WBBMTT/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(id domain.ContactID, x, y float64) domain.ContactRecord {
	return domain.ContactRecord{ID: id, Position: domain.Point{X: x, Y: y}, Kind: domain.KindTouch}
}

func ids(entries []Entry) []domain.ContactID {
	out := make([]domain.ContactID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Record.ID)
	}
	return out
}

func ordinals(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Ordinal)
	}
	return out
}

func TestTracker_BeginMoveEnd(t *testing.T) {
	tr := New(nil, nil)

	assert.Equal(t, Applied, tr.Apply(domain.Begin{Record: touch(1, 10, 20)}))
	assert.Equal(t, Applied, tr.Apply(domain.Move{Record: touch(1, 15, 25)}))

	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, domain.Point{X: 15, Y: 25}, snap[0].Record.Position)

	assert.Equal(t, Applied, tr.Apply(domain.End{ID: 1, Kind: domain.KindTouch}))
	assert.Empty(t, tr.Snapshot())
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_CancelRemovesContact(t *testing.T) {
	tr := New(nil, nil)
	tr.Apply(domain.Begin{Record: touch(7, 0, 0)})

	assert.Equal(t, Applied, tr.Apply(domain.Cancel{ID: 7, Kind: domain.KindTouch}))
	assert.False(t, tr.Has(7))
}

func TestTracker_UnknownContactIsNoOp(t *testing.T) {
	var logs bytes.Buffer
	tr := New(nil, slog.New(slog.NewTextHandler(&logs, nil)))
	tr.Apply(domain.Begin{Record: touch(1, 1, 1)})
	before := tr.Snapshot()

	assert.Equal(t, Ignored, tr.Apply(domain.Move{Record: touch(99, 5, 5)}))
	assert.Equal(t, Ignored, tr.Apply(domain.End{ID: 99, Kind: domain.KindTouch}))
	assert.Equal(t, Ignored, tr.Apply(domain.Cancel{ID: 99, Kind: domain.KindTouch}))

	assert.Equal(t, before, tr.Snapshot())
	assert.Contains(t, logs.String(), "inactive contact")
	assert.Contains(t, logs.String(), "contact_id=99")
}

func TestTracker_BeginForActiveContactOverwritesInPlace(t *testing.T) {
	tr := New(nil, nil)
	tr.Apply(domain.Begin{Record: touch(1, 0, 0)})
	tr.Apply(domain.Begin{Record: touch(2, 0, 0)})

	assert.Equal(t, Applied, tr.Apply(domain.Begin{Record: touch(1, 50, 60)}))

	snap := tr.Snapshot()
	assert.Equal(t, []domain.ContactID{1, 2}, ids(snap))
	assert.Equal(t, domain.Point{X: 50, Y: 60}, snap[0].Record.Position)
}

// Ordinals are positions, not identities: releasing an earlier contact
// renumbers every later one.
func TestTracker_OrdinalsShiftWhenEarlierContactReleases(t *testing.T) {
	tr := New(nil, nil)
	tr.Apply(domain.Begin{Record: touch(10, 0, 0)}) // A
	tr.Apply(domain.Begin{Record: touch(20, 0, 0)}) // B
	tr.Apply(domain.Begin{Record: touch(30, 0, 0)}) // C

	snap := tr.Snapshot()
	assert.Equal(t, []int{0, 1, 2}, ordinals(snap))
	assert.Equal(t, []domain.ContactID{10, 20, 30}, ids(snap))

	tr.Apply(domain.End{ID: 10, Kind: domain.KindTouch})

	snap = tr.Snapshot()
	assert.Equal(t, []int{0, 1}, ordinals(snap))
	assert.Equal(t, []domain.ContactID{20, 30}, ids(snap))
}

func TestTracker_FiltersByInputKind(t *testing.T) {
	tests := []struct {
		name   string
		accept domain.KindSet
		kind   domain.InputKind
		want   Outcome
	}{
		{"touch accepted by default", nil, domain.KindTouch, Applied},
		{"pen filtered by default", nil, domain.KindPen, Filtered},
		{"mouse filtered by default", nil, domain.KindMouse, Filtered},
		{"pen accepted in debug", domain.AllPointers(), domain.KindPen, Applied},
		{"mouse accepted in debug", domain.AllPointers(), domain.KindMouse, Applied},
		{"unknown never accepted", domain.AllPointers(), domain.KindUnknown, Filtered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.accept, nil)
			rec := domain.ContactRecord{ID: 1, Kind: tt.kind}

			assert.Equal(t, tt.want, tr.Apply(domain.Begin{Record: rec}))
			if tt.want == Filtered {
				assert.Equal(t, 0, tr.Len())
			}
		})
	}
}

func TestTracker_FilteredReleaseDoesNotRemove(t *testing.T) {
	tr := New(nil, nil)
	tr.Apply(domain.Begin{Record: touch(1, 0, 0)})

	assert.Equal(t, Filtered, tr.Apply(domain.End{ID: 1, Kind: domain.KindMouse}))
	assert.True(t, tr.Has(1))
}

func TestTracker_NilEventRejected(t *testing.T) {
	tr := New(nil, nil)
	assert.Equal(t, Rejected, tr.Apply(nil))
}

func TestTracker_Clear(t *testing.T) {
	tr := New(nil, nil)
	tr.Apply(domain.Begin{Record: touch(1, 0, 0)})
	tr.Apply(domain.Begin{Record: touch(2, 0, 0)})

	assert.Equal(t, 2, tr.Clear())
	assert.Empty(t, tr.Snapshot())
	assert.Equal(t, 0, tr.Clear())

	tr.Apply(domain.Begin{Record: touch(3, 0, 0)})
	assert.Equal(t, []domain.ContactID{3}, ids(tr.Snapshot()))
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	tr := New(nil, nil)
	tr.Apply(domain.Begin{Record: touch(1, 1, 1)})
	snap := tr.Snapshot()

	tr.Apply(domain.Move{Record: touch(1, 9, 9)})
	tr.Apply(domain.Begin{Record: touch(2, 0, 0)})

	require.Len(t, snap, 1)
	assert.Equal(t, domain.Point{X: 1, Y: 1}, snap[0].Record.Position)
}

// For any event sequence the active set is exactly the ids that have a
// begin not yet matched by an end or cancel, in first-begin order.
func TestTracker_ActiveSetMatchesUnreleasedBegins(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := range 200 {
		tr := New(nil, nil)
		model := []domain.ContactID{}

		for range 50 {
			id := domain.ContactID(rng.IntN(6))
			switch rng.IntN(4) {
			case 0:
				tr.Apply(domain.Begin{Record: touch(id, rng.Float64(), rng.Float64())})
				if !slices.Contains(model, id) {
					model = append(model, id)
				}
			case 1:
				tr.Apply(domain.Move{Record: touch(id, rng.Float64(), rng.Float64())})
			case 2:
				tr.Apply(domain.End{ID: id, Kind: domain.KindTouch})
				model = slices.DeleteFunc(model, func(m domain.ContactID) bool { return m == id })
			case 3:
				tr.Apply(domain.Cancel{ID: id, Kind: domain.KindTouch})
				model = slices.DeleteFunc(model, func(m domain.ContactID) bool { return m == id })
			}

			snap := tr.Snapshot()
			require.Equal(t, model, ids(snap), "round %d", round)
			for i, e := range snap {
				require.Equal(t, i, e.Ordinal)
			}
		}
	}
}
