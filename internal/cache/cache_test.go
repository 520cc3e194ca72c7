package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	prefix  string
	getErr  error
	setErr  error
	flushed int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	b, ok := s.data[key]
	return b, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) Flush(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
		}
	}
	s.prefix = prefix
	s.flushed++
	return nil
}

func (s *fakeStore) Ping(context.Context) error { return s.getErr }
func (s *fakeStore) Close() error               { return nil }

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type item struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func newTestCache(t *testing.T, store Store) *Cache {
	t.Helper()
	c, err := New(Options{Store: store, Prefix: "test"})
	require.NoError(t, err)
	return c
}

func TestFingerprint(t *testing.T) {
	t.Run("insertion order does not matter", func(t *testing.T) {
		p1 := map[string]string{}
		p1["page"] = "1"
		p1["limit"] = "25"
		p1["genres"] = "1"

		p2 := map[string]string{}
		p2["genres"] = "1"
		p2["limit"] = "25"
		p2["page"] = "1"

		for i := 0; i < 50; i++ {
			assert.Equal(t, Fingerprint("manga_list", p1), Fingerprint("manga_list", p2))
		}
		assert.Equal(t, "manga_list?genres=1&limit=25&page=1", Fingerprint("manga_list", p1))
	})

	t.Run("no params", func(t *testing.T) {
		assert.Equal(t, "combined_news", Fingerprint("combined_news", nil))
	})

	t.Run("distinct queries do not collide", func(t *testing.T) {
		a := Fingerprint("search", map[string]string{"q": "one&limit=2"})
		b := Fingerprint("search", map[string]string{"q": "one", "limit": "2"})
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, Fingerprint("search", map[string]string{"q": "x"}), Fingerprint("genre", map[string]string{"q": "x"}))
	})
}

func TestPolicy(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	assert.Less(t, p.TTL(ClassSearch), p.TTL(ClassPagination))
	assert.LessOrEqual(t, p.TTL(ClassPagination), p.TTL(ClassTopList))
	assert.Less(t, p.TTL(ClassTopList), p.TTL(ClassNews))
	assert.Less(t, p.TTL(ClassNews), p.TTL(ClassDetail))
	assert.Less(t, p.TTL(ClassNews), p.TTL(ClassRecommendation))
	assert.Equal(t, p.TTL(ClassDetail), p.TTL(TTLClass("unknown")))

	bad := DefaultPolicy()
	bad[ClassSearch] = 2 * time.Hour
	assert.Error(t, bad.Validate())

	_, err := New(Options{Store: newFakeStore(), Policy: bad})
	assert.Error(t, err)
}

func TestGetOrFetch_SecondCallHitsCache(t *testing.T) {
	store := newFakeStore()
	c := newTestCache(t, store)
	ctx := context.Background()

	var calls int32
	fetch := func(context.Context) (item, error) {
		atomic.AddInt32(&calls, 1)
		return item{ID: 42, Name: "Berserk", Tags: []string{"Action"}}, nil
	}

	first, err := GetOrFetch(ctx, c, "manga_details?id=42", ClassDetail, fetch)
	require.NoError(t, err)
	second, err := GetOrFetch(ctx, c, "manga_details?id=42", ClassDetail, fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)
	assert.Equal(t, 24*time.Hour, store.ttls["test:manga_details?id=42"])
}

func TestGetOrFetch_ErrorsAreNotCached(t *testing.T) {
	store := newFakeStore()
	c := newTestCache(t, store)
	notFound := errors.New("not found")

	var calls int
	fetch := func(context.Context) (item, error) {
		calls++
		return item{}, notFound
	}

	for i := 0; i < 2; i++ {
		_, err := GetOrFetch(context.Background(), c, "manga_details?id=1", ClassDetail, fetch)
		assert.ErrorIs(t, err, notFound)
	}
	assert.Equal(t, 2, calls)
	assert.False(t, store.has("test:manga_details?id=1"))
}

func TestGetOrFetch_StoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.getErr = ErrStoreUnavailable
	store.setErr = ErrStoreUnavailable
	c := newTestCache(t, store)

	var calls int
	fetch := func(context.Context) ([]item, error) {
		calls++
		return []item{{ID: 1}}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetOrFetch(context.Background(), c, "top_manga?filter=popular", ClassTopList, fetch)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_UndecodableEntryIsRefetched(t *testing.T) {
	store := newFakeStore()
	store.data["test:genre?id=1"] = []byte("{not json")
	c := newTestCache(t, store)

	got, err := GetOrFetch(context.Background(), c, "genre?id=1", ClassGenre, func(context.Context) ([]item, error) {
		return []item{{ID: 7}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 7}}, got)
}

func TestGetOrFetch_CoalescesConcurrentMisses(t *testing.T) {
	c := newTestCache(t, newFakeStore())

	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) ([]item, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []item{{ID: 1, Tags: []string{"a"}}}, nil
	}

	const n = 10
	results := make([][]item, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := GetOrFetch(context.Background(), c, "combined_news", ClassNews, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, []item{{ID: 1, Tags: []string{"a"}}}, r)
	}
}

func TestGetOrFetch_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	store := newFakeStore()
	c := newTestCache(t, store)
	ctx, cancel := context.WithCancel(context.Background())

	got, err := GetOrFetch(ctx, c, "manga_details?id=5", ClassDetail, func(fctx context.Context) (item, error) {
		cancel()
		if fctx.Err() != nil {
			return item{}, fctx.Err()
		}
		return item{ID: 5}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.ID)
	assert.True(t, store.has("test:manga_details?id=5"))
}

func TestCache_Flush(t *testing.T) {
	store := newFakeStore()
	c := newTestCache(t, store)

	_, err := GetOrFetch(context.Background(), c, "k", ClassSearch, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	store.data["other:k"] = []byte("1")
	require.NoError(t, c.Flush(context.Background()))

	assert.Equal(t, 1, store.flushed)
	assert.Equal(t, "test:", store.prefix)
	assert.False(t, store.has("test:k"))
	assert.True(t, store.has("other:k"))
}

func TestCodecs_HonorJSONTags(t *testing.T) {
	in := item{ID: 3, Name: "Monster", Tags: []string{"Drama", "Mystery"}}
	for _, name := range []string{"json", "msgpack", "cbor"} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			b, err := codec.Marshal(in)
			require.NoError(t, err)
			var out item
			require.NoError(t, codec.Unmarshal(b, &out))
			assert.Equal(t, in, out)

			var generic map[string]any
			require.NoError(t, codec.Unmarshal(b, &generic))
			assert.Contains(t, generic, "name")
		})
	}

	_, err := CodecByName("xml")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s, err := NewMemoryStore(MemoryConfig{})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Flush(ctx, ""))
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore("memory://")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	r, err := OpenStore("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, r)
	require.NoError(t, r.Close())

	_, err = OpenStore("memcached://localhost")
	assert.Error(t, err)
}
