package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-node-render/internal/source"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, nil), mr
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	st, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTemplate(ctx, "card", "<div>{{name}}</div>"))
	assert.Equal(t, "<div>{{name}}</div>", mustGet(t, mr, "render:template:card"))

	tmpl, err := st.LoadTemplate(ctx, "card")
	require.NoError(t, err)
	assert.Equal(t, "<div>{{name}}</div>", tmpl)

	_, err = st.LoadTemplate(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, source.ErrNotFound)

	assert.ErrorContains(t, st.SaveTemplate(ctx, " ", "x"), "name is required")
	assert.ErrorContains(t, st.SaveTemplate(ctx, "a*", "x"), "pattern characters")
}

func TestContexts(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t)
	ctx := context.Background()

	data := map[string]interface{}{"name": "Ada", "items": []interface{}{map[string]interface{}{"v": 1}}}
	require.NoError(t, st.SaveContext(ctx, "profile", data))

	loaded, err := st.LoadContext(ctx, "profile")
	require.NoError(t, err)
	assert.Equal(t, "Ada", loaded["name"])
	assert.Equal(t, []interface{}{map[string]interface{}{"v": float64(1)}}, loaded["items"])

	viaLoader, err := st.LoadData(ctx, "profile")
	require.NoError(t, err)
	assert.Equal(t, loaded, viaLoader)

	_, err = st.LoadContext(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.SaveContext(ctx, "nil", nil))
	empty, err := st.LoadContext(ctx, "nil")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExistsDeleteList(t *testing.T) {
	t.Parallel()

	st, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTemplate(ctx, "b", "x"))
	require.NoError(t, st.SaveTemplate(ctx, "a", "x"))
	require.NoError(t, st.SaveContext(ctx, "c", map[string]interface{}{}))
	require.NoError(t, mr.Set("unrelated", "x"))

	names, err := st.List(ctx, KindTemplate)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	names, err = st.List(ctx, KindContext)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names)

	ok, err := st.Exists(ctx, KindTemplate, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, st.Delete(ctx, KindTemplate, "a"))
	ok, err = st.Exists(ctx, KindTemplate, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = st.Exists(ctx, KindContext, "b")
	require.NoError(t, err)
	assert.False(t, ok, "namespaces are separate")
}

func TestSetTTL(t *testing.T) {
	t.Parallel()

	st, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTemplate(ctx, "card", "x"))
	require.NoError(t, st.SetTTL(ctx, KindTemplate, "card", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("render:template:card"))

	mr.FastForward(2 * time.Minute)
	_, err := st.LoadTemplate(ctx, "card")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.SetTTL(ctx, KindTemplate, "missing", time.Minute), ErrNotFound)
}

func TestResolverUsesStore(t *testing.T) {
	t.Parallel()

	st, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveTemplate(ctx, "card", "hi"))

	tmpl, err := source.NewResolver(nil, st, nil).Template(ctx, "card")
	require.NoError(t, err)
	assert.Equal(t, "hi", tmpl)
}

func TestPing(t *testing.T) {
	t.Parallel()

	st, mr := newStore(t)
	require.NoError(t, st.Ping(context.Background()))

	mr.Close()
	assert.Error(t, st.Ping(context.Background()))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	value, err := mr.Get(key)
	require.NoError(t, err)
	return value
}
