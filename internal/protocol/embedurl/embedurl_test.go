package embedurl

import (
	"net/url"
	"strings"
	"testing"

	"github.com/danmuck/drawembed/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolp(v bool) *bool    { return &v }
func strp(v string) *string { return &v }
func themep(v Theme) *Theme { return &v }

func mustDocument(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://host.example/app/index.html")
	require.NoError(t, err)
	return u
}

func TestBuildDefaultBase(t *testing.T) {
	testlog.Start(t)

	got, err := Build(Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://embed.diagrams.net/?embed=1&proto=json", got)
}

func TestBuildAbsoluteWithOptions(t *testing.T) {
	testlog.Start(t)

	got, err := Build(Options{
		BaseURL:   "https://example.com/editor",
		Configure: true,
		Parameters: Parameters{
			UI:   themep(ThemeDark),
			Spin: boolp(true),
			Grid: boolp(false),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/editor?embed=1&proto=json&configure=1&ui=dark&spin=1&grid=0", got)
}

func TestBuildRelativeBase(t *testing.T) {
	testlog.Start(t)

	got, err := Build(Options{BaseURL: "my/editor", Document: mustDocument(t)})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "host.example", u.Host)
	assert.True(t, strings.HasSuffix(u.Path, "my/editor"), u.Path)
	assert.Equal(t, "embed=1&proto=json", u.RawQuery)

	rooted, err := Build(Options{BaseURL: "/drawio/", Document: mustDocument(t)})
	require.NoError(t, err)
	assert.Equal(t, "https://host.example/drawio/?embed=1&proto=json", rooted)
}

func TestBuildRelativeWithoutDocument(t *testing.T) {
	testlog.Start(t)

	_, err := Build(Options{BaseURL: "my/editor"})
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestBuildInvalidBase(t *testing.T) {
	testlog.Start(t)

	_, err := Build(Options{BaseURL: "http://[::1"})
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
}

func TestBuildReplacesQueryKeepsFragment(t *testing.T) {
	testlog.Start(t)

	got, err := Build(Options{BaseURL: "https://example.com/e?stale=1#page=2"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/e?embed=1&proto=json#page=2", got)
}

func TestBuildOmitsUnsetAndSerializesBooleans(t *testing.T) {
	testlog.Start(t)

	got, err := Build(Options{Parameters: Parameters{
		Dark:      boolp(false),
		NoExitBtn: boolp(true),
		Lang:      strp("de"),
	}})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "1", q.Get("embed"))
	assert.Equal(t, "json", q.Get("proto"))
	assert.Equal(t, "0", q.Get("dark"))
	assert.Equal(t, "1", q.Get("noExitBtn"))
	assert.Equal(t, "de", q.Get("lang"))
	assert.False(t, q.Has("configure"))
	assert.False(t, q.Has("spin"))
	assert.Len(t, q, 5)
}

func TestBuildIdempotentAndSingleValued(t *testing.T) {
	testlog.Start(t)

	opts := Options{
		BaseURL: "https://example.com/editor",
		Parameters: Parameters{
			UI:       themep(ThemeKennedy),
			Target:   strp("blank"),
			LayerIDs: strp("a b"),
			Extra:    []Param{{Key: "pv", Value: "0"}},
		},
	}
	first, err := Build(opts)
	require.NoError(t, err)
	second, err := Build(opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	u, err := url.Parse(first)
	require.NoError(t, err)
	for key, values := range u.Query() {
		assert.Len(t, values, 1, key)
	}
	assert.Contains(t, first, "layer-ids=a+b")
	assert.True(t, strings.HasSuffix(first, "&pv=0"), first)
}

func TestValuesDeclarationOrder(t *testing.T) {
	testlog.Start(t)

	p := Parameters{
		Lang:      strp("en"),
		Close:     boolp(true),
		UI:        themep(ThemeMin),
		Libraries: boolp(true),
		Edit:      strp("_blank"),
	}
	var keys []string
	for _, v := range p.Values() {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []string{"ui", "libraries", "edit", "close", "lang"}, keys)
}

func TestValuesFollowSetOrder(t *testing.T) {
	testlog.Start(t)

	p := Parameters{Lang: strp("de")}
	p.Set("spin", true)
	p.AddExtra("pv", "0")
	p.Set("ui", "dark")
	p.Set("spin", false)
	p.Set("offline", "1")

	assert.Equal(t, []Param{
		{Key: "spin", Value: "0"},
		{Key: "pv", Value: "0"},
		{Key: "ui", Value: "dark"},
		{Key: "offline", Value: "1"},
		{Key: "lang", Value: "de"},
	}, p.Values())

	got, err := Build(Options{Parameters: p})
	require.NoError(t, err)
	assert.Equal(t, "https://embed.diagrams.net/?embed=1&proto=json&spin=0&pv=0&ui=dark&offline=1&lang=de", got)
}

func TestParametersSet(t *testing.T) {
	testlog.Start(t)

	var p Parameters
	assert.True(t, p.Set("spin", true))
	assert.True(t, p.Set("grid", int64(0)))
	assert.True(t, p.Set("ui", "sketch"))
	assert.False(t, p.Set("pv", int64(1)))

	require.NotNil(t, p.Spin)
	assert.True(t, *p.Spin)
	require.NotNil(t, p.Grid)
	assert.False(t, *p.Grid)
	require.NotNil(t, p.UI)
	assert.Equal(t, ThemeSketch, *p.UI)
	assert.Equal(t, []Param{{Key: "pv", Value: "1"}}, p.Extra)
}

func TestEncodeEscaping(t *testing.T) {
	testlog.Start(t)

	got := Encode([]Param{{Key: "a b", Value: "x~y*z/&="}})
	assert.Equal(t, "a+b=x%7Ey*z%2F%26%3D", got)
}
