package paging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetch returns the scripted responses in order and records the
// pages it was asked for.
type scriptedFetch struct {
	mu        sync.Mutex
	responses []response
	pages     []int
	queries   []string
}

type response struct {
	page Page[string]
	err  error
}

func (s *scriptedFetch) fetch(ctx context.Context, page int, query string) (Page[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = append(s.pages, page)
	s.queries = append(s.queries, query)
	if len(s.responses) == 0 {
		return Page[string]{}, errors.New("no scripted response")
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r.page, r.err
}

func TestLoader_Initial(t *testing.T) {
	fetch := &scriptedFetch{}
	loader := New(fetch.fetch, "q")

	state := loader.State()
	assert.Empty(t, state.Items)
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.True(t, state.HasMore)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, StatusIdle, state.Status())
	assert.Empty(t, fetch.pages, "nothing is fetched until LoadMore")
}

func TestLoader_LoadMore(t *testing.T) {
	ctx := context.Background()

	t.Run("accumulates pages in order", func(t *testing.T) {
		fetch := &scriptedFetch{responses: []response{
			{page: Page[string]{Items: []string{"a", "b", "c"}, HasMore: true}},
			{page: Page[string]{Items: []string{"d"}, HasMore: false}},
		}}
		loader := New(fetch.fetch, "q")

		fetched, err := loader.LoadMore(ctx)
		require.NoError(t, err)
		assert.True(t, fetched)

		fetched, err = loader.LoadMore(ctx)
		require.NoError(t, err)
		assert.True(t, fetched)

		state := loader.State()
		assert.Equal(t, []string{"a", "b", "c", "d"}, state.Items)
		assert.False(t, state.HasMore)
		assert.Equal(t, 3, state.Page)
		assert.Equal(t, []int{1, 2}, fetch.pages)
	})

	t.Run("uses initial page and passes query through", func(t *testing.T) {
		fetch := &scriptedFetch{responses: []response{
			{page: Page[string]{Items: []string{"a", "b"}, HasMore: false}},
		}}
		loader := New(fetch.fetch, "sort=score.desc", WithInitialPage(5))

		_, err := loader.LoadMore(ctx)
		require.NoError(t, err)

		assert.Equal(t, []int{5}, fetch.pages)
		assert.Equal(t, []string{"sort=score.desc"}, fetch.queries)
		assert.Equal(t, "sort=score.desc", loader.Query())
		assert.Equal(t, []string{"a", "b"}, loader.State().Items)
	})

	t.Run("no fetch after exhaustion", func(t *testing.T) {
		fetch := &scriptedFetch{responses: []response{
			{page: Page[string]{Items: []string{"a"}, HasMore: false}},
		}}
		loader := New(fetch.fetch, "q")

		_, err := loader.LoadMore(ctx)
		require.NoError(t, err)

		fetched, err := loader.LoadMore(ctx)
		assert.NoError(t, err)
		assert.False(t, fetched)
		assert.Len(t, fetch.pages, 1)
	})

	t.Run("duplicates across pages are kept", func(t *testing.T) {
		fetch := &scriptedFetch{responses: []response{
			{page: Page[string]{Items: []string{"a", "b"}, HasMore: true}},
			{page: Page[string]{Items: []string{"b", "c"}, HasMore: false}},
		}}
		loader := New(fetch.fetch, "q")

		loader.LoadMore(ctx)
		loader.LoadMore(ctx)

		assert.Equal(t, []string{"a", "b", "b", "c"}, loader.State().Items)
	})

	t.Run("full pages then short page", func(t *testing.T) {
		const perPage, fullPages = 4, 3
		var calls int32
		fetch := func(ctx context.Context, page int, _ struct{}) (Page[int], error) {
			atomic.AddInt32(&calls, 1)
			n := perPage
			if page > fullPages {
				n = 2
			}
			items := make([]int, n)
			for i := range items {
				items[i] = page*100 + i
			}
			return Page[int]{Items: items, HasMore: n == perPage}, nil
		}
		loader := New(fetch, struct{}{})

		for i := 1; i <= fullPages; i++ {
			_, err := loader.LoadMore(ctx)
			require.NoError(t, err)
			assert.True(t, loader.State().HasMore, "still more after full page %d", i)
		}
		_, err := loader.LoadMore(ctx)
		require.NoError(t, err)

		state := loader.State()
		assert.Len(t, state.Items, perPage*fullPages+2)
		assert.False(t, state.HasMore)

		fetched, _ := loader.LoadMore(ctx)
		assert.False(t, fetched)
		assert.Equal(t, int32(fullPages+1), atomic.LoadInt32(&calls))
	})
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("failure records error then retry succeeds", func(t *testing.T) {
		boom := errors.New("Service Unavailable")
		fetch := &scriptedFetch{responses: []response{
			{err: boom},
			{page: Page[string]{Items: []string{"a", "b"}, HasMore: true}},
		}}
		loader := New(fetch.fetch, "q")

		fetched, err := loader.LoadMore(ctx)
		assert.True(t, fetched)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.ErrorIs(t, err, boom)

		state := loader.State()
		assert.Empty(t, state.Items)
		assert.Equal(t, 1, state.Page)
		assert.True(t, state.HasMore)
		assert.Equal(t, StatusErrored, state.Status())

		var fetchErr *FetchError
		require.ErrorAs(t, state.Err, &fetchErr)
		assert.Equal(t, 1, fetchErr.Page)

		fetched, err = loader.LoadMore(ctx)
		require.NoError(t, err)
		assert.True(t, fetched)

		state = loader.State()
		assert.NoError(t, state.Err)
		assert.Equal(t, []string{"a", "b"}, state.Items)
		assert.Equal(t, []int{1, 1}, fetch.pages, "retry asks for the same page")
	})

	t.Run("failure keeps earlier items", func(t *testing.T) {
		fetch := &scriptedFetch{responses: []response{
			{page: Page[string]{Items: []string{"a"}, HasMore: true}},
			{err: errors.New("Bad Gateway")},
		}}
		loader := New(fetch.fetch, "q")

		loader.LoadMore(ctx)
		loader.LoadMore(ctx)

		state := loader.State()
		assert.Equal(t, []string{"a"}, state.Items)
		assert.Equal(t, 2, state.Page)
		assert.Error(t, state.Err)
	})

	t.Run("fetch timeout", func(t *testing.T) {
		fetch := func(ctx context.Context, page int, _ string) (Page[string], error) {
			<-ctx.Done()
			return Page[string]{}, ctx.Err()
		}
		loader := New(fetch, "q", WithFetchTimeout(10*time.Millisecond))

		fetched, err := loader.LoadMore(ctx)
		assert.True(t, fetched)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, loader.State().Loading)
	})
}

func TestLoader_ConcurrentLoadMore(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context, page int, _ string) (Page[string], error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return Page[string]{Items: []string{"x"}, HasMore: true}, nil
	}
	loader := New(fetch, "q")

	first := make(chan bool)
	go func() {
		fetched, _ := loader.LoadMore(ctx)
		first <- fetched
	}()
	<-started

	assert.True(t, loader.State().Loading)
	assert.Equal(t, StatusLoading, loader.State().Status())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetched, err := loader.LoadMore(ctx)
			assert.False(t, fetched)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	close(release)
	assert.True(t, <-first)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"x"}, loader.State().Items)
}

func TestLoader_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("late result is dropped", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		fetch := func(ctx context.Context, page int, _ string) (Page[string], error) {
			close(started)
			<-release
			return Page[string]{Items: []string{"late"}, HasMore: true}, nil
		}
		loader := New(fetch, "q")

		var notified int32
		loader.OnChange(func(State[string]) { atomic.AddInt32(&notified, 1) })

		done := make(chan struct{})
		go func() {
			loader.LoadMore(ctx)
			close(done)
		}()
		<-started
		loader.Close()
		close(release)
		<-done

		assert.True(t, loader.Closed())
		assert.Empty(t, loader.State().Items)
		assert.Equal(t, int32(1), atomic.LoadInt32(&notified), "only the loading transition was reported")
	})

	t.Run("no fetch after close", func(t *testing.T) {
		fetch := &scriptedFetch{}
		loader := New(fetch.fetch, "q")
		loader.Close()

		fetched, err := loader.LoadMore(ctx)
		assert.False(t, fetched)
		assert.NoError(t, err)
		assert.Empty(t, fetch.pages)
	})
}

func TestLoader_OnChange(t *testing.T) {
	ctx := context.Background()
	fetch := &scriptedFetch{responses: []response{
		{page: Page[string]{Items: []string{"a"}, HasMore: false}},
	}}
	loader := New(fetch.fetch, "q")

	var statuses []Status
	loader.OnChange(func(s State[string]) { statuses = append(statuses, s.Status()) })

	loader.LoadMore(ctx)

	assert.Equal(t, []Status{StatusLoading, StatusIdle}, statuses)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "errored", StatusErrored.String())
}
