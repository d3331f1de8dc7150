package readability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Schwab Market Update</title>
<script>var note = "Published as of: January 1, 1999";</script></head>
<body>
<div class="byline"><span>Published as of: April 17, 2025, 9:15 a.m. ET</span></div>
<p>Stocks opened higher on strong earnings.</p>
<p>   </p>
<p>Treasury yields eased.</p>
</body></html>`

func TestExtract(t *testing.T) {
	snap, err := Extract(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "2025-04-17", snap.PublishDateKey)
	assert.Equal(t, "April 17, 2025, 9:15 a.m. ET", snap.PublishDateRaw)
	assert.Equal(t, "Stocks opened higher on strong earnings.\nTreasury yields eased.", snap.BodyText)
	assert.Equal(t, ContentHash(snap.BodyText), snap.ContentHash)
	assert.Len(t, snap.ContentHash, 32)
	assert.Equal(t, samplePage, snap.RawMarkup)
}

func TestBodyTextKeepsParagraphWhitespace(t *testing.T) {
	snap, err := Extract(`<html><body>
<p>Published as of: April 17, 2025</p>
<p> Stocks rose. </p>
<p>
</p>
<p>Oil fell.</p>
</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Published as of: April 17, 2025\n Stocks rose. \nOil fell.", snap.BodyText)
	assert.Equal(t, "3ebf6803f4fa27cd40b362e169d2b0de", snap.ContentHash)
}

func TestParsePublishedText(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantKey string
		wantRaw string
	}{
		{"full timestamp", "Published as of: April 17, 2025, 9:15 a.m. ET", "2025-04-17", "April 17, 2025, 9:15 a.m. ET"},
		{"single digit day", "Published as of: March 3, 2025", "2025-03-03", "March 3, 2025"},
		{"non-breaking space", "Published as of:\u00a0May 9, 2025, 8:00 a.m. ET", "2025-05-09", "May 9, 2025, 8:00 a.m. ET"},
		{"leading text", "  Updated. Published as of: June 30, 2025  ", "2025-06-30", "June 30, 2025"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			key, raw, err := ParsePublishedText(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.wantKey, key)
			assert.Equal(t, c.wantRaw, raw)
		})
	}
}

func TestParsePublishedTextFailsLoudly(t *testing.T) {
	cases := []string{
		"Published as of: sometime today",
		"Published as of: Smarch 17, 2025",
		"Published as of: February 30, 2025",
		"Published as of:",
	}
	for _, in := range cases {
		key, raw, err := ParsePublishedText(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrExtractionFailed), in)
		assert.Empty(t, key)
		assert.Empty(t, raw)
	}
}

func TestExtractMissingMarker(t *testing.T) {
	_, err := Extract(`<html><body><p>No date here.</p></body></html>`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractMalformedDate(t *testing.T) {
	snap, err := Extract(`<html><body><span>Published as of: soon</span><p>Body.</p></body></html>`)
	require.ErrorIs(t, err, ErrExtractionFailed)
	assert.Empty(t, snap.PublishDateKey)
}

func TestExtractEmptyBody(t *testing.T) {
	_, err := Extract(`<html><body><span>Published as of: April 17, 2025</span></body></html>`)
	require.ErrorIs(t, err, ErrExtractionFailed)
}

func TestMarkerInsideScriptIgnored(t *testing.T) {
	_, err := Extract(`<html><head><script>x = "Published as of: April 17, 2025"</script></head><body><p>Body.</p></body></html>`)
	require.ErrorIs(t, err, ErrExtractionFailed)
}
