package region

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MMMarcy/voxlume/internal/models"
)

const listingPage = `<html><body>
<div id="header">menu</div>
<table class="main_table"><tr><td><a href="/abss/a/">A</a></td></tr></table>
<table class="main_table"><tr><td>second</td></tr></table>
</body></html>`

const detailPage = `<html><body>
<div class="post"><div class="postTitle"><h1>Book</h1></div><p>Format: M4B</p></div>
</body></html>`

func TestExtractListingTable(t *testing.T) {
	got, ok := New().Extract([]byte(listingPage), models.RegionListingTable)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, `<table class="main_table">`))
	assert.Contains(t, got, `/abss/a/`)
	assert.NotContains(t, got, "second")
	assert.NotContains(t, got, "menu")
}

func TestExtractDetailPost(t *testing.T) {
	got, ok := New().Extract([]byte(detailPage), models.RegionDetailPost)
	require.True(t, ok)
	assert.Contains(t, got, "Format: M4B")
	assert.True(t, strings.HasPrefix(got, `<div class="post">`))
}

func TestExtractMissingRegion(t *testing.T) {
	_, ok := New().Extract([]byte(detailPage), models.RegionListingTable)
	assert.False(t, ok)

	_, ok = New().Extract(nil, models.RegionDetailPost)
	assert.False(t, ok)

	_, ok = New().Extract([]byte(detailPage), models.Region("sidebar"))
	assert.False(t, ok)
}
