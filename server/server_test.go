package server

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"

	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/task"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(task.NewStore(), nil, t.TempDir())
}

// writeTestWav writes one second of a 440 Hz sine as 16-bit mono PCM.
func writeTestWav(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	const sampleRate = 22050
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, sampleRate),
	}
	for i := range buf.Data {
		buf.Data[i] = int(30000 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}
	assert.NoError(t, enc.Write(buf))
	assert.NoError(t, enc.Close())
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = fw.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload-audio", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRootListsEndpoints(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "endpoints")
}

func TestUploadRejectsNonWav(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, uploadRequest(t, "song.mp3", []byte("not audio")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body model.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "WAV")
}

func TestUploadWithoutFileField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/upload-audio", bytes.NewReader(nil))
	newTestServer(t).Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownTaskIs404(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	for _, r := range []*http.Request{
		httptest.NewRequest("GET", "/analysis-status/nope", nil),
		httptest.NewRequest("GET", "/analysis-result/nope", nil),
		httptest.NewRequest("DELETE", "/analysis-task/nope", nil),
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNotFound, rec.Code, r.Method+" "+r.URL.Path)
	}
}

func TestUploadAnalyzeAndFetchResult(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	wavPath := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWav(t, wavPath)
	content, err := os.ReadFile(wavPath)
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "tone.wav", content))
	assert.Equal(t, http.StatusOK, rec.Code)

	var upload model.UploadResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	assert.NotEmpty(t, upload.TaskID)

	assert.Eventually(t, func() bool {
		got, ok := srv.store.Get(upload.TaskID)
		return ok && got.Status == task.StatusCompleted
	}, 15*time.Second, 50*time.Millisecond, "analysis should finish")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/analysis-result/"+upload.TaskID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.AnalysisResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 22050, result.SampleRate)
	assert.Equal(t, 42, result.Frames)
	assert.GreaterOrEqual(t, result.Beat.BPM, 60.0)
	assert.LessOrEqual(t, result.Beat.BPM, 200.0)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/active-tasks", nil))
	var active model.ActiveTasksResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Equal(t, 1, active.Count)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/analysis-task/"+upload.TaskID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResultWhileProcessingIs202(t *testing.T) {
	srv := newTestServer(t)
	created := srv.store.Create("song.wav")
	srv.store.SetProcessing(created.ID)
	srv.store.SetProgress(created.ID, 30)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/analysis-result/"+created.ID, nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestResultOfFailedTaskIs422(t *testing.T) {
	srv := newTestServer(t)
	created := srv.store.Create("song.wav")
	srv.store.Fail(created.ID, os.ErrNotExist)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/analysis-result/"+created.ID, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
