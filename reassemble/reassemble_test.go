package reassemble

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"xmldisasm/common"
	"xmldisasm/disassemble"
	"xmldisasm/markup"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func writeFiles(t *testing.T, fsys billy.Filesystem, files map[string]string) {
	t.Helper()

	for name, content := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(content), 0o644))
	}
}

// children returns sorted serialized children of the document root, so
// documents can be compared ignoring whitespace and order of root children.
func children(t *testing.T, data []byte) (markup.Header, []string) {
	t.Helper()

	doc, err := markup.Parse("doc.xml", data)
	require.NoError(t, err)

	var out []string
	var add func(name string, v markup.Value)
	add = func(name string, v markup.Value) {
		switch v := v.(type) {
		case markup.Scalar:
			line, err := markup.Line(name, v)
			require.NoError(t, err)
			out = append(out, line)
		case *markup.Element:
			d := etree.NewDocument()
			d.SetRoot(v.Etree())
			s, err := markup.Write(d, -1)
			require.NoError(t, err)
			out = append(out, string(s))
		case markup.Repeated:
			for _, m := range v {
				add(name, m)
			}
		}
	}
	for _, f := range doc.Root.Fields() {
		add(f.Name, f.Value)
	}
	slices.Sort(out)
	return doc.Header(), out
}

func TestRecomposeFragments(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"work/Root/Root.xml": `<?xml version="1.0" encoding="UTF-8"?>
<Root a="1">
    <Leaf1>x</Leaf1>
</Root>`,
		"work/Root/n1.Nested-meta.xml": `<?xml version="1.0" encoding="UTF-8"?>
<Root a="1">
    <Nested>
        <Id>n1</Id>
        <V>1</V>
    </Nested>
</Root>`,
	})

	res, err := Recompose(context.Background(), fsys, "work/Root", Options{Indent: 4}, testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "work/Root.xml", res.Output)
	assert.Equal(t, "Root", res.Root)
	assert.Equal(t, 2, res.Fragments)
	assert.Empty(t, res.Skipped)

	data, err := util.ReadFile(fsys, "work/Root.xml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))

	header, got := children(t, data)
	wantHeader, want := children(t, []byte(`<Root a="1"><Leaf1>x</Leaf1><Nested><Id>n1</Id><V>1</V></Nested></Root>`))
	assert.Equal(t, wantHeader, header)
	assert.Equal(t, want, got)
}

func TestRoundTrip(t *testing.T) {
	const original = `<?xml version="1.0" encoding="UTF-8"?>
<Profile xmlns="http://soap.sforce.com/2006/04/metadata">
    <custom>false</custom>
    <fieldPermissions>
        <editable>true</editable>
        <field>Account.Name</field>
        <readable>true</readable>
    </fieldPermissions>
    <fieldPermissions>
        <editable>false</editable>
        <field>Account.Phone</field>
        <readable>true</readable>
    </fieldPermissions>
    <layoutAssignments>
        <layout>Account-Layout</layout>
    </layoutAssignments>
    <userLicense>Salesforce</userLicense>
    <description><![CDATA[R&D <only>]]></description>
</Profile>`

	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{"src/Admin.profile-meta.xml": original})
	log := testLogger(t)

	batch, err := disassemble.Process(context.Background(), fsys, "src",
		disassemble.Options{UniqueIDFields: []string{"field", "layout"}, Indent: 4, PostPurge: true}, log)
	require.NoError(t, err)
	require.NoError(t, batch.Err())
	require.Len(t, batch.Results, 1)
	assert.Equal(t, 3, batch.Results[0].Nested)

	_, err = fsys.Stat("src/Admin/fieldPermissions/Account.Phone.fieldPermissions-meta.xml")
	require.NoError(t, err)

	res, err := Recompose(context.Background(), fsys, "src/Admin", Options{Extension: "profile-meta.xml", Indent: 4}, log)
	require.NoError(t, err)
	assert.Equal(t, "src/Admin.profile-meta.xml", res.Output)
	assert.Equal(t, 4, res.Fragments)

	data, err := util.ReadFile(fsys, res.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<![CDATA[R&D <only>]]>`)

	header, got := children(t, data)
	wantHeader, want := children(t, []byte(original))
	assert.Equal(t, wantHeader, header)
	assert.Equal(t, want, got)
}

func TestRecomposeOrder(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"work/R/b.xml":          `<R><b>1</b></R>`,
		"work/R/A.xml":          `<R><a>1</a></R>`,
		"work/R/item10/x.xml":   `<R><i10>1</i10></R>`,
		"work/R/item2/x.xml":    `<R><i2>1</i2></R>`,
		"work/R/c/notes.txt":    `ignored`,
		"work/R/.git/HEAD.xml":  `<R><hidden>1</hidden></R>`,
		"work/R/zz/broken.xml":  `<R><z b=1>1</z></R>`,
		"work/R/zz/ok.meta.xml": `<R><z>1</z></R>`,
	})

	order := func(o common.NameOrder) []string {
		res, err := Recompose(context.Background(), fsys, "work/R", Options{Order: o, Indent: -1}, testLogger(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"work/R/zz/broken.xml"}, res.Skipped)

		doc := etree.NewDocument()
		data, err := util.ReadFile(fsys, res.Output)
		require.NoError(t, err)
		require.NoError(t, doc.ReadFromBytes(data))

		var tags []string
		for _, el := range doc.Root().ChildElements() {
			tags = append(tags, el.Tag)
		}
		return tags
	}

	assert.Equal(t, []string{"a", "b", "i10", "i2", "z"}, order(common.NameOrderAlpha))
	assert.Equal(t, []string{"a", "b", "i2", "i10", "z"}, order(common.NameOrderNatural))
}

func TestRecomposeNamespace(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"work/R/R.xml": `<R kind="x"><a>1</a></R>`,
	})

	res, err := Recompose(context.Background(), fsys, "work/R", Options{Namespace: "urn:example", Indent: -1}, testLogger(t))
	require.NoError(t, err)

	data, err := util.ReadFile(fsys, res.Output)
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><R kind="x" xmlns="urn:example"><a>1</a></R>`, strings.TrimSpace(string(data)))
}

func TestRecomposeFailures(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"work/file.xml":       `<R><a>1</a></R>`,
		"work/broken/b.xml":   `<R><a b=1>1</a></R>`,
		"work/broken/txt/a.x": `<R/>`,
	})
	require.NoError(t, fsys.MkdirAll("work/empty", 0o755))
	log := testLogger(t)

	_, err := Recompose(context.Background(), fsys, "work/file.xml", Options{}, log)
	assert.ErrorIs(t, err, common.ErrNotADirectory)

	_, err = Recompose(context.Background(), fsys, "work/empty", Options{}, log)
	assert.ErrorIs(t, err, common.ErrNoRootElement)

	_, err = Recompose(context.Background(), fsys, "work/broken", Options{}, log)
	assert.ErrorIs(t, err, common.ErrNoRootElement)

	_, err = fsys.Stat("work/broken.xml")
	assert.Error(t, err, "nothing should be written")
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare("n1.Nested-meta.xml", "Root.xml", common.NameOrderAlpha))
	assert.Negative(t, Compare("apple.xml", "Banana.xml", common.NameOrderAlpha))
	assert.Positive(t, Compare("item10.xml", "item2.xml", common.NameOrderNatural))
	assert.Negative(t, Compare("item10.xml", "item2.xml", common.NameOrderAlpha))
	assert.Negative(t, Compare("A.b.xml", "a.c.xml", common.NameOrderAlpha))
	assert.Zero(t, Compare("a.xml", "a.xml", common.NameOrderNatural))
}

func TestRoundTripDottedIdentifiers(t *testing.T) {
	const original = `<Root>note<L>x</L><Lib><Id>.NET</Id><V>1</V></Lib><Lib><Id>...</Id><V>2</V></Lib><Lib><Id>Go</Id><V>3</V></Lib></Root>`

	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{"src/Root.xml": original})
	log := testLogger(t)

	batch, err := disassemble.Process(context.Background(), fsys, "src",
		disassemble.Options{UniqueIDFields: []string{"Id"}, Indent: 4}, log)
	require.NoError(t, err)
	require.NoError(t, batch.Err())

	for _, name := range []string{"%2ENET.Lib-meta.xml", "%2E...Lib-meta.xml", "Go.Lib-meta.xml"} {
		_, err := fsys.Stat("src/Root/Lib/" + name)
		require.NoError(t, err, name)
	}

	res, err := Recompose(context.Background(), fsys, "src/Root", Options{Indent: 4}, log)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Fragments)
	assert.Empty(t, res.Skipped)

	data, err := util.ReadFile(fsys, res.Output)
	require.NoError(t, err)

	header, got := children(t, data)
	wantHeader, want := children(t, []byte(original))
	assert.Equal(t, wantHeader, header)
	assert.Equal(t, want, got)

	doc, err := markup.Parse("Root.xml", data)
	require.NoError(t, err)
	assert.Equal(t, "note", doc.Root.Text.Text)
}
