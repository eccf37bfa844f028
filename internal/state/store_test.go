package state

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

func init() {
	logging.Discard()
}

func sampleTokens() []models.TokenRecord {
	return []models.TokenRecord{
		{ID: "1", Token: "aaa.bbb.ccc", Name: "first", Valid: models.ValidityValid},
		{ID: "2", Token: "ddd.eee.fff", Name: "second", Valid: models.ValidityInvalid, ErrorKind: "expired"},
	}
}

func TestStoreDefaults(t *testing.T) {
	store := New()

	require.Nil(t, store.Selected())
	require.Equal(t, models.ViewAnalysis, store.ActiveView())
	require.Empty(t, store.Tokens())
	require.False(t, store.Loading())
	require.Empty(t, store.Err())
}

func TestStoreGetUnknownField(t *testing.T) {
	store := New()

	_, err := store.Get(Field("bogus"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownField))
}

func TestStoreSetBroadcastsNamedThenStateChanged(t *testing.T) {
	store := New()

	var order []string
	store.Subscribe(EventStateChanged, func(next, prev State) error {
		order = append(order, EventStateChanged.String())
		return nil
	})
	store.Subscribe(EventTokensUpdated, func(next, prev State) error {
		order = append(order, EventTokensUpdated.String())
		require.Len(t, next.Tokens, 2)
		require.Empty(t, prev.Tokens)
		return nil
	})

	store.Set(EventTokensUpdated, Tokens(sampleTokens()), Loading(false))

	require.Equal(t, []string{"jwtList:updated", "state:changed"}, order)
}

func TestStoreSetWithoutEventOnlyBroadcastsStateChanged(t *testing.T) {
	store := New()

	calls := map[Event]int{}
	for _, ev := range Events() {
		ev := ev
		store.Subscribe(ev, func(next, prev State) error {
			calls[ev]++
			return nil
		})
	}

	store.Set(EventNone, Loading(true))
	store.Set(EventStateChanged, Loading(false))

	require.Equal(t, map[Event]int{EventStateChanged: 2}, calls)
}

func TestStoreHandlersRunInRegistrationOrder(t *testing.T) {
	store := New()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		store.Subscribe(EventTokenSelected, func(next, prev State) error {
			order = append(order, i)
			return nil
		})
	}

	rec := sampleTokens()[0]
	store.Set(EventTokenSelected, Selected(&rec))

	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestStoreReselectingSameTokenStillNotifies(t *testing.T) {
	store := New()
	rec := sampleTokens()[0]

	count := 0
	store.Subscribe(EventTokenSelected, func(next, prev State) error {
		count++
		return nil
	})

	store.Set(EventTokenSelected, Selected(&rec))
	store.Set(EventTokenSelected, Selected(&rec))

	require.Equal(t, 2, count)
}

func TestStoreUnsubscribe(t *testing.T) {
	store := New()

	called := false
	unsubscribe := store.Subscribe(EventViewChanged, func(next, prev State) error {
		called = true
		return nil
	})
	require.Equal(t, 1, store.SubscriberCount(EventViewChanged))

	unsubscribe()
	unsubscribe()

	store.Set(EventViewChanged, ActiveView(models.ViewVerify))
	require.False(t, called)
	require.Equal(t, 0, store.SubscriberCount(EventViewChanged))
}

func TestStoreUnsubscribeRemovesOnlyThatRegistration(t *testing.T) {
	store := New()

	var calls []string
	handler := func(tag string) Handler {
		return func(next, prev State) error {
			calls = append(calls, tag)
			return nil
		}
	}

	store.Subscribe(EventErrorRaised, handler("a"))
	unsubscribe := store.Subscribe(EventErrorRaised, handler("b"))
	store.Subscribe(EventErrorRaised, handler("c"))

	unsubscribe()
	store.Set(EventErrorRaised, Error("boom"))

	require.Equal(t, []string{"a", "c"}, calls)
}

func TestStoreUnsubscribeDuringBroadcastSkipsLaterHandler(t *testing.T) {
	store := New()

	var unsubscribeSecond func()
	secondCalled := false
	store.Subscribe(EventTokensLoading, func(next, prev State) error {
		unsubscribeSecond()
		return nil
	})
	unsubscribeSecond = store.Subscribe(EventTokensLoading, func(next, prev State) error {
		secondCalled = true
		return nil
	})

	store.Set(EventTokensLoading, Loading(true))
	require.False(t, secondCalled)
}

func TestStoreHandlerFailuresAreIsolated(t *testing.T) {
	store := New()

	var reached []string
	store.Subscribe(EventErrorRaised, func(next, prev State) error {
		reached = append(reached, "error")
		return errors.New("handler failed")
	})
	store.Subscribe(EventErrorRaised, func(next, prev State) error {
		reached = append(reached, "panic")
		panic("handler exploded")
	})
	store.Subscribe(EventErrorRaised, func(next, prev State) error {
		reached = append(reached, "ok")
		return nil
	})
	store.Subscribe(EventStateChanged, func(next, prev State) error {
		reached = append(reached, "state")
		return nil
	})

	require.NotPanics(t, func() {
		store.Set(EventErrorRaised, Error("could not reach the analysis service"))
	})
	require.Equal(t, []string{"error", "panic", "ok", "state"}, reached)
	require.Equal(t, "could not reach the analysis service", store.Err())
}

func TestStoreNestedSetRunsImmediately(t *testing.T) {
	store := New()

	var order []string
	store.Subscribe(EventTokensUpdated, func(next, prev State) error {
		order = append(order, "updated")
		if len(next.Tokens) > 0 && next.Selected == nil {
			first := next.Tokens[0]
			store.Set(EventTokenSelected, Selected(&first))
		}
		return nil
	})
	store.Subscribe(EventTokenSelected, func(next, prev State) error {
		order = append(order, "selected:"+next.Selected.ID)
		return nil
	})
	store.Subscribe(EventStateChanged, func(next, prev State) error {
		order = append(order, "state")
		return nil
	})

	store.Set(EventTokensUpdated, Tokens(sampleTokens()))

	require.Equal(t, []string{"updated", "selected:1", "state", "state"}, order)
	require.Equal(t, "1", store.Selected().ID)
}

func TestStoreSnapshotIsIndependent(t *testing.T) {
	store := New()
	rec := sampleTokens()[0]
	store.Set(EventNone, Tokens(sampleTokens()), Selected(&rec))

	before := store.Snapshot()
	mutated := store.Snapshot()
	mutated.Tokens[0].Name = "changed"
	mutated.Selected.Name = "changed"
	mutated.Tokens = append(mutated.Tokens, models.TokenRecord{ID: "3"})

	if diff := cmp.Diff(before, store.Snapshot()); diff != "" {
		t.Fatalf("store changed through snapshot (-want +got):\n%s", diff)
	}
}

func TestStoreHandlerCannotMutateStore(t *testing.T) {
	store := New()

	store.Subscribe(EventTokensUpdated, func(next, prev State) error {
		next.Tokens[0].Name = "tampered"
		return nil
	})
	store.Set(EventTokensUpdated, Tokens(sampleTokens()))

	require.Equal(t, "first", store.Tokens()[0].Name)
}

func TestStoreClear(t *testing.T) {
	store := New()

	called := false
	for _, ev := range Events() {
		store.Subscribe(ev, func(next, prev State) error {
			called = true
			return nil
		})
	}
	store.Clear()
	store.Set(EventErrorRaised, Error("x"))

	require.False(t, called)
	for _, ev := range Events() {
		require.Equal(t, 0, store.SubscriberCount(ev))
	}
}

func TestStoreWithInitial(t *testing.T) {
	initial := Default()
	initial.ActiveView = models.ViewCreate
	store := New(WithInitial(initial))

	require.Equal(t, models.ViewCreate, store.ActiveView())
}

func TestStoreSetGetProperty(t *testing.T) {
	views := models.Views()
	tokens := sampleTokens()

	rapid.Check(t, func(t *rapid.T) {
		store := New()
		model := Default()

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			var changes []Change

			if rapid.Bool().Draw(t, "setLoading") {
				v := rapid.Bool().Draw(t, "loading")
				changes = append(changes, Loading(v))
				model.Loading = v
			}
			if rapid.Bool().Draw(t, "setError") {
				v := rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "error")
				changes = append(changes, Error(v))
				model.Error = v
			}
			if rapid.Bool().Draw(t, "setView") {
				v := rapid.SampledFrom(views).Draw(t, "view")
				changes = append(changes, ActiveView(v))
				model.ActiveView = v
			}
			if rapid.Bool().Draw(t, "setTokens") {
				n := rapid.IntRange(0, len(tokens)).Draw(t, "tokenCount")
				list := append([]models.TokenRecord{}, tokens[:n]...)
				changes = append(changes, Tokens(list))
				model.Tokens = list
			}
			if rapid.Bool().Draw(t, "setSelected") {
				if rapid.Bool().Draw(t, "clearSelected") {
					changes = append(changes, Selected(nil))
					model.Selected = nil
				} else {
					rec := rapid.SampledFrom(tokens).Draw(t, "selected")
					changes = append(changes, Selected(&rec))
					model.Selected = &rec
				}
			}

			event := rapid.SampledFrom(append([]Event{EventNone}, Events()...)).Draw(t, "event")
			store.Set(event, changes...)

			if diff := cmp.Diff(model, store.Snapshot()); diff != "" {
				t.Fatalf("state mismatch after step %d (-want +got):\n%s", i, diff)
			}
			for _, field := range Fields() {
				_, err := store.Get(field)
				if err != nil {
					t.Fatalf("Get(%s): %v", field, err)
				}
			}
			got, _ := store.Get(FieldLoading)
			if got != model.Loading {
				t.Fatalf("Get(loading) = %v, want %v", got, model.Loading)
			}
		}
	})
}
