package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDecodeImageRoundTrip(t *testing.T) {
	svc := NewImageService(utils.NewHTTPClient())
	rng := rand.New(rand.NewSource(1))

	inputs := [][]byte{{}, {0x00}, []byte("hello"), pngHeader}
	for i := 0; i < 20; i++ {
		b := make([]byte, rng.Intn(512))
		rng.Read(b)
		inputs = append(inputs, b)
	}

	for _, x := range inputs {
		data, err := svc.Encode(bytes.NewReader(x))
		require.NoError(t, err)

		uri := DecodeImage(data, "jpeg")
		require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"), uri)

		payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
		require.NoError(t, err)
		assert.Equal(t, len(x), len(payload))
		assert.True(t, bytes.Equal(x, payload))
	}
}

func TestDecodeImageNilInputs(t *testing.T) {
	assert.Equal(t, "", DecodeImage(nil, "png"))
	assert.Equal(t, "", DecodeImage([]byte{1}, ""))
	assert.Equal(t, "data:image/png;base64,AQ==", DecodeImage([]byte{1}, "image/png"))
}

func TestEncodeNilReader(t *testing.T) {
	svc := NewImageService(utils.NewHTTPClient())
	data, err := svc.Encode(nil)
	assert.NoError(t, err)
	assert.Nil(t, data)

	data, typ, err := svc.EncodeUpload(nil)
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, typ)
}

func TestEncodeUploadDetectsType(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="poster_file"; filename="poster.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	part.Write(pngHeader)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	fh := form.File["poster_file"][0]

	svc := NewImageService(utils.NewHTTPClient())
	data, typ, err := svc.EncodeUpload(fh)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", typ)
}

func TestDetectImageTypeFallback(t *testing.T) {
	assert.Equal(t, "image/gif", DetectImageType([]byte("not an image"), "image/gif"))
	assert.Equal(t, "image/webp", DetectImageType(nil, "image/webp"))
}

func TestEncodeFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write(pngHeader)
	}))
	defer srv.Close()

	svc := NewImageService(utils.NewHTTPClientWith(srv.Client()))

	data, err := svc.EncodeFromURL(context.Background(), srv.URL+"/w500/poster.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = svc.EncodeFromURL(context.Background(), srv.URL+"/gone.jpg")
	assert.True(t, utils.IsNotFound(err))
}
