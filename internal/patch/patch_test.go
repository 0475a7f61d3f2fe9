package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoHunkDiff = `diff --git a/main.go b/main.go
index 83db48f..bf269f4 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@ package main
 a
+b
 c
 d
@@ -10,4 +11,3 @@ func main() {
 j
-k
 l
 m
`

func TestParseTwoHunks(t *testing.T) {
	d, err := ParseFile(twoHunkDiff)
	require.NoError(t, err)

	assert.Equal(t, "main.go", d.Path())
	assert.False(t, d.IsNew)
	require.Len(t, d.Hunks, 2)

	first := d.Hunks[0]
	assert.Equal(t, 1, first.OldStart)
	assert.Equal(t, 3, first.OldLines)
	assert.Equal(t, 1, first.NewStart)
	assert.Equal(t, 4, first.NewLines)
	assert.Equal(t, "package main", first.Section)
	require.Len(t, first.Lines, 4)
	assert.Equal(t, Line{Kind: Added, NewNum: 2, Text: "b"}, first.Lines[1])
	assert.Equal(t, Line{Kind: Context, OldNum: 2, NewNum: 3, Text: "c"}, first.Lines[2])

	second := d.Hunks[1]
	assert.Equal(t, Line{Kind: Removed, OldNum: 11, Text: "k"}, second.Lines[1])
	assert.Equal(t, "@@ -10,4 +11,3 @@ func main() {", second.Header())
}

func TestRowsAndLocate(t *testing.T) {
	d, err := ParseFile(twoHunkDiff)
	require.NoError(t, err)

	assert.Equal(t, 10, d.RowCount())
	assert.Len(t, d.Rows(), 10)

	tests := []struct {
		row  int
		want Row
		ok   bool
	}{
		{0, Row{Hunk: 0, Line: -1}, true},
		{2, Row{Hunk: 0, Line: 1}, true},
		{5, Row{Hunk: 1, Line: -1}, true},
		{9, Row{Hunk: 1, Line: 3}, true},
		{10, Row{}, false},
		{-1, Row{}, false},
	}
	for _, tt := range tests {
		got, ok := d.Locate(tt.row)
		assert.Equal(t, tt.ok, ok, "row %d", tt.row)
		assert.Equal(t, tt.want, got, "row %d", tt.row)
	}
}

func TestParseNoNewlineMarker(t *testing.T) {
	text := "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1 +1 @@\n-old\n\\ No newline at end of file\n+new\n\\ No newline at end of file\n"
	d, err := ParseFile(text)
	require.NoError(t, err)
	require.Len(t, d.Hunks[0].Lines, 2)
	assert.True(t, d.Hunks[0].Lines[0].NoNewline)
	assert.True(t, d.Hunks[0].Lines[1].NoNewline)

	out, err := BuildHunkPatch(d, 0, Stage)
	require.NoError(t, err)
	assert.Contains(t, out, "-old\n"+NoNewlineMarker+"\n+new\n"+NoNewlineMarker+"\n")
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		path      string
		isNew     bool
		isDeleted bool
		isBinary  bool
		mode      string
	}{
		{
			name:  "new file",
			text:  "diff --git a/n.txt b/n.txt\nnew file mode 100755\nindex 0000000..e69de29\n--- /dev/null\n+++ b/n.txt\n@@ -0,0 +1 @@\n+x\n",
			path:  "n.txt",
			isNew: true,
			mode:  "100755",
		},
		{
			name:      "deleted file",
			text:      "diff --git a/d.txt b/d.txt\ndeleted file mode 100644\n--- a/d.txt\n+++ /dev/null\n@@ -1 +0,0 @@\n-x\n",
			path:      "d.txt",
			isDeleted: true,
			mode:      "100644",
		},
		{
			name:     "binary",
			text:     "diff --git a/img.png b/img.png\nindex 1..2 100644\nBinary files a/img.png and b/img.png differ\n",
			path:     "img.png",
			isBinary: true,
			mode:     "100644",
		},
		{
			name: "path with spaces",
			text: "diff --git a/my file.txt b/my file.txt\nindex 1..2 100644\n",
			path: "my file.txt",
			mode: "100644",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseFile(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.path, d.Path())
			assert.Equal(t, tt.isNew, d.IsNew)
			assert.Equal(t, tt.isDeleted, d.IsDeleted)
			assert.Equal(t, tt.isBinary, d.IsBinary)
			assert.Equal(t, tt.mode, d.Mode)
		})
	}
}

func TestParseMultipleFilesSkipsPreamble(t *testing.T) {
	text := "commit abc\nAuthor: A <a@b>\n\n    message\n\n" +
		"diff --git a/a b/a\n--- a/a\n+++ b/a\n@@ -1 +1 @@\n-1\n+2\n" +
		"diff --git a/b b/b\n--- a/b\n+++ b/b\n@@ -1 +1 @@\n-3\n+4\n"
	diffs, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	assert.Equal(t, "a", diffs[0].Path())
	assert.Equal(t, "b", diffs[1].Path())
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"truncated hunk", "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1,3 +1,3 @@\n a\n"},
		{"bad header", "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -x +1 @@\n"},
		{"hunk without file", "@@ -1 +1 @@\n-a\n+b\n"},
		{"overlapping hunks", "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1,2 +1,2 @@\n a\n b\n@@ -2 +2 @@\n-b\n+c\n"},
		{"bad line prefix", "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1 +1 @@\n*a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseFileRequiresOneFile(t *testing.T) {
	_, err := ParseFile("")
	require.ErrorIs(t, err, ErrMalformed)
}
