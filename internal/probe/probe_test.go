package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hdrMovieJSON = `{
  "format": {
    "filename": "/media/movie.mkv",
    "nb_streams": 3,
    "format_name": "matroska,webm",
    "duration": "7199.583000",
    "size": "19327352832",
    "bit_rate": "21474836"
  },
  "streams": [
    {
      "index": 0, "codec_type": "video", "codec_name": "hevc",
      "width": 3840, "height": 2160,
      "color_transfer": "smpte2084",
      "disposition": {"attached_pic": 0}
    },
    {
      "index": 1, "codec_type": "audio", "codec_name": "eac3",
      "channels": 6, "bit_rate": "768000",
      "tags": {"language": "eng"}
    },
    {
      "index": 2, "codec_type": "subtitle", "codec_name": "subrip",
      "bit_rate": "1200",
      "tags": {"language": "eng"}
    }
  ]
}`

const sdrMovieJSON = `{
  "format": {"duration": "5400.500000", "size": "8589934592", "bit_rate": "12000000"},
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264",
     "width": 1920, "height": 1080, "color_transfer": "bt709"},
    {"index": 1, "codec_type": "audio", "codec_name": "ac3", "channels": 6}
  ]
}`

const coverArtFirstJSON = `{
  "format": {"duration": "60.0"},
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "mjpeg",
     "width": 600, "height": 600, "disposition": {"attached_pic": 1}},
    {"index": 1, "codec_type": "video", "codec_name": "h264",
     "width": 1280, "height": 720}
  ]
}`

func TestParseJSON_HDRMovie(t *testing.T) {
	r, err := ParseJSON([]byte(hdrMovieJSON))
	require.NoError(t, err)

	require.NotNil(t, r.PrimaryVideo)
	assert.Equal(t, "hevc", r.PrimaryVideo.Codec)
	assert.Equal(t, 2160, r.PrimaryVideo.Height)
	assert.Equal(t, "3840x2160", r.Resolution())
	assert.Equal(t, TransferPQ, r.Transfer())
	assert.Equal(t, int64(768_000), r.AudioBitrate())
	assert.Equal(t, int64(1200), r.SubtitleBitrate())
	assert.Equal(t, int64(19_327_352_832), r.Format.Size)
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := ParseJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestParseJSON_SkipsAttachedPic(t *testing.T) {
	r, err := ParseJSON([]byte(coverArtFirstJSON))
	require.NoError(t, err)
	require.NotNil(t, r.PrimaryVideo)
	assert.Equal(t, "h264", r.PrimaryVideo.Codec)
	assert.Equal(t, 720, r.PrimaryVideo.Height)
}

func TestTransfer_Classification(t *testing.T) {
	cases := []struct {
		raw  string
		want ColorTransfer
	}{
		{"smpte2084", TransferPQ},
		{"arib-std-b67", TransferHLG},
		{"bt709", TransferSDR},
		{"smpte170m", TransferSDR},
		{"", TransferUnknown},
		{"mystery", TransferUnknown},
	}
	for _, tc := range cases {
		r := &Result{PrimaryVideo: &VideoStream{ColorTransfer: tc.raw}}
		assert.Equal(t, tc.want, r.Transfer(), "transfer %q", tc.raw)
	}
}

func TestIsHDR(t *testing.T) {
	assert.True(t, TransferPQ.IsHDR())
	assert.True(t, TransferHLG.IsHDR())
	assert.False(t, TransferSDR.IsHDR())
	assert.False(t, TransferUnknown.IsHDR())
}

func TestMetadata_RoundsDurationHalfUp(t *testing.T) {
	r, err := ParseJSON([]byte(hdrMovieJSON))
	require.NoError(t, err)
	md, err := r.Metadata()
	require.NoError(t, err)
	// 7199.583 rounds up to 7200.
	assert.Equal(t, int64(7200), md.DurationSeconds)

	r2, err := ParseJSON([]byte(sdrMovieJSON))
	require.NoError(t, err)
	md2, err := r2.Metadata()
	require.NoError(t, err)
	// 5400.5 rounds half-up to 5401.
	assert.Equal(t, int64(5401), md2.DurationSeconds)
}

func TestMetadata_Fields(t *testing.T) {
	r, err := ParseJSON([]byte(hdrMovieJSON))
	require.NoError(t, err)
	md, err := r.Metadata()
	require.NoError(t, err)

	assert.Equal(t, int64(768_000), md.AudioBitrate)
	assert.Equal(t, int64(1200), md.SubtitleBitrate)
	assert.Equal(t, 2160, md.SourceHeight)
	assert.Equal(t, TransferPQ, md.ColorTransfer)
}

func TestMetadata_UndetectedBitratesAreZero(t *testing.T) {
	r, err := ParseJSON([]byte(sdrMovieJSON))
	require.NoError(t, err)
	md, err := r.Metadata()
	require.NoError(t, err)
	// The ac3 stream reports no bit_rate: zero means unknown, not silent.
	assert.Zero(t, md.AudioBitrate)
	assert.Zero(t, md.SubtitleBitrate)
}

func TestMetadata_NoVideoStream(t *testing.T) {
	r, err := ParseJSON([]byte(`{"format": {"duration": "100.0"}, "streams": [
		{"index": 0, "codec_type": "audio", "codec_name": "flac"}]}`))
	require.NoError(t, err)
	_, err = r.Metadata()
	assert.Error(t, err)
}

func TestMetadata_MissingDuration(t *testing.T) {
	r, err := ParseJSON([]byte(`{"format": {}, "streams": [
		{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080}]}`))
	require.NoError(t, err)
	_, err = r.Metadata()
	assert.Error(t, err)
}
